/*
Package domain contains the core data shapes of the onboarding flow.

It defines the three independently edited sub-entities of an onboarding page, the
flat payload derived from them at submit time, and the submission state machine
vocabulary. The package is pure: no I/O, no transport, no persistence.

# Key Entities

  - ContextualInfo, MediatorPreference, GoalInfo: the sub-entities owned by a page.
  - Form: the three sub-entities together, the only source of an OnboardingPayload.
  - Envelope: the wire wrapper sent to the guidance service ("onboarding_data").
  - SubmissionState: idle, loading, success or error plus an optional display message.
  - History: the audit trail of resolved submission attempts of a page.
*/
package domain
