/*
Package ports defines the driven ports (interfaces) of concord.

These interfaces decouple the submission coordinator and the servers from
concrete transports and storage backends.

# Key Interfaces

  - GuidanceClient: sends an onboarding envelope to the guidance service.
  - Advisor: turns onboarding data into guidance text (server side).
  - HistoryStore: persists the submission history of pages.
  - DistributedLocker: coordinates history writes across replicas.
*/
package ports
