// Package domain contains the core business entities, value objects, and
// domain logic of the application: the curriculum hierarchy, per-user
// progression state, gamification accounting, streak bookkeeping, and
// vocabulary scheduling. It is independent of any specific infrastructure
// or delivery mechanism.
package domain
