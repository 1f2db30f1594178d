// Package reminder implements the loan reminder core: a tiered reminder
// policy, an idempotent scheduler that realizes policy output as one-shot
// alarm registrations, a rehydrator that rebuilds registrations after a
// restart, and a dispatcher that turns fired alarms into user-visible
// notifications.
//
// The package is organised around four components:
//
//   - Policy     – pure mapping from days-until-due to a set of fire times
//   - Scheduler  – registers/cancels one-shot alarms with deterministic identities
//   - Rehydrator – re-derives all active loans and re-schedules them on boot
//   - Dispatcher – renders and emits the notification when an alarm fires
//
// Components interact only through small collaborator interfaces (Registrar,
// LoanSource, Presenter), keeping the core decoupled from the alarm backend,
// the loan store, and the notification surface.
//
// # Scheduling model
//
// Every reminder belonging to a loan occupies a slot with a fixed index.
// The alarm identity for a slot is derived deterministically from
// (bookID, userID, slot), so re-scheduling the same loan overwrites prior
// registrations instead of duplicating them, and Cancel can enumerate and
// cancel every identity the loan could ever have used without any persisted
// bookkeeping.
//
// Scheduling is best effort: registration failures fall back from
// exact to inexact to deferrable alarms, and a total failure is logged and
// swallowed. The user may simply not receive a reminder; nothing in this
// package is fatal to the host process.
//
// # Usage
//
//	registrar, _ := alarm.NewRegistry(dispatcher.HandleFire)
//	sched, _ := reminder.NewScheduler(registrar)
//
//	_ = sched.Schedule(ctx, reminder.Loan{
//	    BookID: "b1", UserID: "u1",
//	    BookTitle: "The Go Programming Language",
//	    DueAt: time.Now().AddDate(0, 0, 15),
//	})
package reminder
