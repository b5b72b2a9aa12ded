package domain

// Logical names of the record types the relay touches.
const (
	EntityContact    = "contact"
	EntityEmail      = "email"
	EntityAnnotation = "annotation"
	EntityAttachment = "activitymimeattachment"
	EntitySystemUser = "systemuser"
)

// EntityReference points at a record of a given logical type.
type EntityReference struct {
	// LogicalName is the record type, e.g. "email".
	LogicalName string

	// ID is the unique identifier of the record.
	ID string
}

// NewReference returns a reference to the record id of type logicalName.
func NewReference(logicalName, id string) EntityReference {
	return EntityReference{LogicalName: logicalName, ID: id}
}

// IsZero reports whether the reference is unset.
func (r EntityReference) IsZero() bool {
	return r.LogicalName == "" && r.ID == ""
}

// String returns "logicalname:id".
func (r EntityReference) String() string {
	return r.LogicalName + ":" + r.ID
}
