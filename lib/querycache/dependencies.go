package querycache

// Action is the kind of backend write a Change reports.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Scope selects which keys of a dependent entity a change reaches.
type Scope int

const (
	// ScopeList is the dependent entity's unscoped collection.
	ScopeList Scope = iota
	// ScopeRow is the dependent entity keyed by the changed row's id.
	ScopeRow
	// ScopeParent is the dependent entity keyed by one of the change's parents.
	ScopeParent
	// ScopeAll is every key of the dependent entity.
	ScopeAll
)

// Target is one dependent query family of an entity.
type Target struct {
	Entity Entity
	Scope  Scope
	// Via names the parent whose id scopes the key when Scope is ScopeParent.
	Via Entity
	// On restricts the target to one action. Empty means every action.
	On Action
}

// Change describes a committed write.
type Change struct {
	Entity  Entity
	Action  Action
	ID      string
	Parents map[Entity]string
	// Patched lists keys the writer already updated in place. They are not
	// invalidated.
	Patched []Key
}

// Dependencies maps a changed entity to the query families it can affect.
type Dependencies map[Entity][]Target

// DefaultDependencies is the dependency table for the studio's entities.
var DefaultDependencies = Dependencies{
	EntityProject: {
		{Entity: EntityProject, Scope: ScopeList},
		{Entity: EntityProject, Scope: ScopeRow},
		{Entity: EntityConsultantAssignments, Scope: ScopeAll},
		{Entity: EntityAssignment, Scope: ScopeRow, On: ActionDelete},
		{Entity: EntityInvoice, Scope: ScopeAll, On: ActionDelete},
		{Entity: EntityTask, Scope: ScopeAll, On: ActionDelete},
		{Entity: EntityAdminStats, Scope: ScopeList},
	},
	EntityConsultant: {
		{Entity: EntityConsultant, Scope: ScopeList},
		{Entity: EntityConsultant, Scope: ScopeRow},
		{Entity: EntityConsultantGroup, Scope: ScopeList},
		{Entity: EntityAssignment, Scope: ScopeAll},
		{Entity: EntityConsultantAssignments, Scope: ScopeRow, On: ActionDelete},
		{Entity: EntityInvoice, Scope: ScopeAll, On: ActionDelete},
		{Entity: EntityTask, Scope: ScopeAll, On: ActionDelete},
		{Entity: EntityAdminStats, Scope: ScopeList},
	},
	EntityConsultantGroup: {
		{Entity: EntityConsultantGroup, Scope: ScopeList},
		{Entity: EntityConsultant, Scope: ScopeAll},
		{Entity: EntityAssignment, Scope: ScopeAll},
		{Entity: EntityAdminStats, Scope: ScopeList},
	},
	EntityGroupMembership: {
		{Entity: EntityConsultantGroup, Scope: ScopeList},
		{Entity: EntityConsultant, Scope: ScopeList},
		{Entity: EntityConsultant, Scope: ScopeParent, Via: EntityConsultant},
		{Entity: EntityAssignment, Scope: ScopeAll},
	},
	EntityAssignment: {
		{Entity: EntityAssignment, Scope: ScopeParent, Via: EntityProject},
		{Entity: EntityConsultantAssignments, Scope: ScopeParent, Via: EntityConsultant},
		{Entity: EntityInvoice, Scope: ScopeRow, On: ActionDelete},
		{Entity: EntityTask, Scope: ScopeRow, On: ActionDelete},
	},
	EntityInvoice: {
		{Entity: EntityInvoice, Scope: ScopeParent, Via: EntityAssignment},
	},
	EntityTask: {
		{Entity: EntityTask, Scope: ScopeParent, Via: EntityAssignment},
	},
	EntityProfile: {
		{Entity: EntityProfile, Scope: ScopeList},
		{Entity: EntityAdminStats, Scope: ScopeList},
	},
}

// Resolve returns the exact keys and the wildcard patterns a change reaches.
// Targets whose scope id is missing from the change are skipped.
func (d Dependencies) Resolve(change Change) ([]Key, []string) {
	var (
		keys     []Key
		patterns []string
		seen     = make(map[string]bool)
	)
	for _, k := range change.Patched {
		seen[k.String()] = true
	}
	for _, target := range d[change.Entity] {
		if target.On != "" && target.On != change.Action {
			continue
		}
		if target.Scope == ScopeAll {
			p := target.Entity.pattern()
			if !seen[p] {
				seen[p] = true
				patterns = append(patterns, p)
			}
			continue
		}

		var key Key
		switch target.Scope {
		case ScopeList:
			key = ListKey(target.Entity)
		case ScopeRow:
			if change.ID == "" {
				continue
			}
			key = ScopedKey(target.Entity, change.ID)
		case ScopeParent:
			parent := change.Parents[target.Via]
			if parent == "" {
				continue
			}
			key = ScopedKey(target.Entity, parent)
		}
		if !seen[key.String()] {
			seen[key.String()] = true
			keys = append(keys, key)
		}
	}
	return keys, patterns
}
