package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/wtaconnect/backoffice/internal/aws"
)

// Store persists audit entries keyed by event id.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	retention time.Duration
	nowFunc   func() time.Time
}

// NewStore creates a new Store. retention sets the TTL of each entry; zero keeps entries forever.
func NewStore(client aws.DynamoDBAPI, tableName string, retention time.Duration) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		retention: retention,
		nowFunc:   time.Now,
	}
}

// Record writes the event unless an entry with the same id exists.
// Returns (true, nil) if written, (false, nil) for a duplicate delivery.
func (s *Store) Record(ctx context.Context, ev Event) (bool, error) {
	if ev.EventID == "" {
		return false, errors.New("event id is required")
	}
	now := s.nowFunc().UTC()
	entry := Entry{Event: ev, RecordedAt: now}
	if s.retention > 0 {
		entry.ExpiresAt = now.Add(s.retention).Unix()
	}

	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return false, fmt.Errorf("marshal audit entry: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(event_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, fmt.Errorf("put audit entry: %w", err)
	}
	return true, nil
}

// Get retrieves an entry by event id. If not found, returns (nil, nil).
func (s *Store) Get(ctx context.Context, eventID string) (*Entry, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"event_id": &types.AttributeValueMemberS{Value: eventID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var e Entry
	if err := attributevalue.UnmarshalMap(out.Item, &e); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &e, nil
}

func awsString(s string) *string { return &s }
