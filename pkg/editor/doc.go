/*
Package editor provides the stateless field-group editors of the onboarding form.

An editor receives the current value of one sub-entity and a replace callback.
Each edit builds a new value that differs from the current one in exactly one
field and hands it to the callback; editors never keep state of their own and
never talk to the guidance service.

	ed := editor.ContextualEditor{Value: form.Contextual, OnChange: coord.SetContextual}
	_ = ed.Edit("conflictDescription", "noise at night")

User input reaching an editor from a transport (HTTP, terminal) should be passed
through SanitizeField first.
*/
package editor
