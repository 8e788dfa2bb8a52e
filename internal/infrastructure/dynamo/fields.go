package dynamo

// DynamoDB attribute names referenced outside of struct tags.
const (
	fieldSchoolID  = "school_id"
	fieldCreatedBy = "created_by"

	indexCreatedBy = "created_by-index"
)
