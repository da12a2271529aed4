package activity

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	Collection   string
	EntityID     *string
	ActivityType *ActivityType
	Limit        int
	Offset       int
}
