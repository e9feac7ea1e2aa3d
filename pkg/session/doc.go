/*
Package session manages the lifetime of onboarding pages and their audit history.

A Registry holds the mounted pages of a server process. Each page is a
coordinator.Coordinator with fresh sub-entities; pages are discarded on
Unmount or after sitting idle longer than the registry TTL. Form values are
never restored from storage.

A Manager records every resolved submission of a page in a ports.HistoryStore.
It serializes the load-modify-save cycle per page, integrating local reference
counted mutexes with an optional ports.DistributedLocker for multi-replica
deployments.
*/
package session
