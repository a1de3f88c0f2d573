// Package services contains the client application services. SessionManager
// owns the sign-in, restore, sign-out and profile update flows: it keeps the
// in-memory session, the durable session records and the outbound client's
// credential in step.
package services
