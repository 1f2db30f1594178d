// Package alarm provides an in-process one-shot alarm registry: timers that
// fire a callback at an arbitrary future instant, addressed by caller-chosen
// integer identities.
//
// The registry mirrors the semantics of OS alarm services: registering an
// identity that already exists replaces the prior registration, cancelling
// an unknown identity is a no-op, and registrations are lost when the
// process stops; callers are expected to rehydrate on restart.
//
// Three precision tiers are offered. Exact registrations fire at the
// requested instant; inexact registrations coarsen the instant to the next
// minute boundary; deferrable registrations coarsen it to the next
// five-minute boundary. Exact scheduling can be disabled to model runtimes
// that do not grant the corresponding permission, in which case
// RegisterExact fails and callers are expected to fall back.
//
// # Usage
//
//	reg, err := alarm.NewRegistry(func(ctx context.Context, p reminder.Payload) {
//	    dispatcher.HandleFire(ctx, p)
//	})
//	if err != nil {
//	    return err
//	}
//	defer reg.Close()
//
//	_ = reg.RegisterExact(identity, time.Now().Add(time.Hour), payload)
package alarm
