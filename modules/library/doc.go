// Package library implements the book catalog, loan, and wishlist domain of
// the loan tracker.
//
// The Service owns every state transition a loan can take: Assign lends a
// copy and schedules the borrower's reminder ladder, Return frees the copy,
// cancels the ladder, and notifies wishlist waiters, ExtendDueDate moves the
// due date and rebuilds the ladder. The reminder core is driven through the
// narrow ReminderScheduler port, so tests swap it for a recorder.
//
// Persistence sits behind the Repository interface with a MongoDB
// implementation for production and an in-memory one for tests. The Mongo
// repository doubles as the reminder core's loan data source, feeding
// boot-time rehydration from the same collections.
//
// Router exposes the module over HTTP using chi: catalog CRUD, assignment
// lifecycle, loan listings, wishlist, the notification inbox, and the
// POST /system/rehydrate restart signal.
package library
