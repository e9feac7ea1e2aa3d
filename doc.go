/*
Package concord collects conflict onboarding answers and turns them into guidance.

An onboarding page owns three independently edited parts: contextual questions
about the conflict, a mediator style, and the goals of the person asking for help.
Submitting the page merges them into one flat payload, sends it to a guidance
service and shows either the returned advice or an error message.

# Architecture

The module follows a hexagonal layout:

  - pkg/domain: the data shapes and the submission state vocabulary.
  - pkg/editor: field-group editors that report whole-object replacements.
  - pkg/coordinator: the per-page submission state machine.
  - pkg/ports: the guidance client, advisor, history store and locker boundaries.
  - pkg/adapters: HTTP guidance client, web onboarding server, guidance API,
    MCP server, advisors and history stores (memory, file, redis, sqlite).
  - pkg/session: the page registry and the history manager.

# Usage

	client := guidance.New(guidance.DefaultEndpoint)
	page := coordinator.New(client)

	_ = page.EditContextual("conflictDescription", "Noise after midnight")
	_ = page.SelectMediator("empathetic")
	_ = page.EditGoals("desiredOutcome", "Agree on quiet hours")

	state := page.Submit(ctx)
	fmt.Println(state.Status, state.Text())

The concord command wires the same pieces into a web server (concord serve), a
guidance API (concord guide), a terminal form (concord onboard), a one-shot
submitter (concord submit) and an MCP server (concord mcp).
*/
package concord
