package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/school-directory/internal/domain"
)

// SchoolRepo provides typed DynamoDB operations for the schools table.
// PK: school_id.
type SchoolRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSchoolRepo(client *dynamodb.Client, tableName string) *SchoolRepo {
	return &SchoolRepo{client: client, tableName: tableName}
}

// Put inserts a school. An existing row with the same key is never overwritten.
func (r *SchoolRepo) Put(ctx context.Context, s *domain.School) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal school: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{
			"#pk": fieldSchoolID,
		},
	})
	if err != nil {
		return fmt.Errorf("put school: %w", err)
	}
	return nil
}

func (r *SchoolRepo) Get(ctx context.Context, schoolID string) (*domain.School, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldSchoolID, schoolID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("school not found: %w", domain.ErrNotFound)
	}
	var s domain.School
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// List scans the whole table and returns schools newest first.
func (r *SchoolRepo) List(ctx context.Context) ([]domain.School, error) {
	var schools []domain.School
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan schools: %w", err)
		}
		var batch []domain.School
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal schools: %w", err)
		}
		schools = append(schools, batch...)
	}
	sortNewestFirst(schools)
	return schools, nil
}

// ListByCreator returns the schools registered by email, newest first.
func (r *SchoolRepo) ListByCreator(ctx context.Context, email string) ([]domain.School, error) {
	var schools []domain.School
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexCreatedBy),
		KeyConditionExpression: aws.String("#cb = :cb"),
		ExpressionAttributeNames: map[string]string{
			"#cb": fieldCreatedBy,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cb": &types.AttributeValueMemberS{Value: email},
		},
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query schools by creator: %w", err)
		}
		var batch []domain.School
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal schools: %w", err)
		}
		schools = append(schools, batch...)
	}
	sortNewestFirst(schools)
	return schools, nil
}
