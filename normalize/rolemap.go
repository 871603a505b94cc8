// Package normalize converts tool runs into storable finding chunks.
//
// Information Hiding:
// - Per-tool importance weighting hidden behind Normalize
// - Summary formatting and truncation internalized
// - Tool-to-role routing hidden behind RolesFor
package normalize

import (
	"github.com/richinex/toolvault/model"
	"github.com/richinex/toolvault/tools"
)

// roleMap routes each tool's findings to the consumer roles that should see
// them. Adding a tool means adding an adapter plus one row here; nothing else
// changes. TestRoleMapCoversRegistry keeps this table in sync with the
// default registry.
var roleMap = map[string][]model.AgentRole{
	tools.ToolDependencyAudit:  {model.RoleSecurity},
	tools.ToolLicenseScan:      {model.RoleSecurity, model.RoleDependency},
	tools.ToolModuleCycleCheck: {model.RoleArchitecture},
	tools.ToolLayeringCheck:    {model.RoleArchitecture},
	tools.ToolOutdatedScan:     {model.RoleDependency},
}

// RolesFor returns the consumer roles mapped to a tool, in table order.
// Unknown tools map to no roles.
func RolesFor(toolID string) []model.AgentRole {
	roles := roleMap[toolID]
	out := make([]model.AgentRole, len(roles))
	copy(out, roles)
	return out
}

// MappedTools returns every tool ID present in the role table.
func MappedTools() []string {
	ids := make([]string, 0, len(roleMap))
	for id := range roleMap {
		ids = append(ids, id)
	}
	return ids
}
