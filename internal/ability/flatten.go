package ability

import "github.com/aethergs/server/internal/gamedata"

// FlattenActions linearizes one event-hook action list into the index space
// that local_id action indices address. For each top-level action: the
// action itself, then its immediate children — taken from Actions when that
// list is non-empty, otherwise from SuccessActions followed by FailActions.
// The branch lists are a fallback, never additive with Actions.
//
// Re-derived on every resolution; definitions are data, a cached copy would
// just be an invalidation hazard.
func FlattenActions(hook []gamedata.ActionDefinition) []*gamedata.ActionDefinition {
	out := make([]*gamedata.ActionDefinition, 0, len(hook)*2)
	for i := range hook {
		a := &hook[i]
		out = append(out, a)
		if len(a.Actions) > 0 {
			for j := range a.Actions {
				out = append(out, &a.Actions[j])
			}
			continue
		}
		for j := range a.SuccessActions {
			out = append(out, &a.SuccessActions[j])
		}
		for j := range a.FailActions {
			out = append(out, &a.FailActions[j])
		}
	}
	return out
}
