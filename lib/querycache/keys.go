package querycache

// Entity names a cached collection family. Each entity is keyed by an
// optional parent id: the project for assignments, the assignment for
// invoices and tasks, the user for profiles, or the row id for single rows.
type Entity string

const (
	EntityProject               Entity = "project"
	EntityConsultant            Entity = "consultant"
	EntityConsultantGroup       Entity = "consultant_group"
	EntityGroupMembership       Entity = "consultant_group_member"
	EntityAssignment            Entity = "assignment"
	EntityConsultantAssignments Entity = "consultant_assignment"
	EntityInvoice               Entity = "invoice"
	EntityTask                  Entity = "task"
	EntityProfile               Entity = "profile"
	EntityAdminStats            Entity = "admin_stats"
)

const keyPrefix = "q:"

// Key identifies one cached query result: (entity, optional parent id).
type Key struct {
	Entity Entity
	Parent string
}

// ListKey is the key of an entity's unscoped collection.
func ListKey(entity Entity) Key {
	return Key{Entity: entity}
}

// ScopedKey is the key of an entity's collection or row under parent.
func ScopedKey(entity Entity, parent string) Key {
	return Key{Entity: entity, Parent: parent}
}

func (k Key) String() string {
	return keyPrefix + string(k.Entity) + ":" + k.Parent
}

// pattern matches every key of the entity, scoped or not.
func (e Entity) pattern() string {
	return keyPrefix + string(e) + ":*"
}
