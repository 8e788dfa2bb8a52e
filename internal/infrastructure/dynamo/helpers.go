package dynamo

import (
	"sort"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/school-directory/internal/domain"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// sortNewestFirst orders schools by creation time, newest first, breaking
// ties on the ULID key so the order is stable.
func sortNewestFirst(schools []domain.School) {
	sort.SliceStable(schools, func(i, j int) bool {
		if !schools[i].CreatedAt.Equal(schools[j].CreatedAt) {
			return schools[i].CreatedAt.After(schools[j].CreatedAt)
		}
		return schools[i].SchoolID > schools[j].SchoolID
	})
}
