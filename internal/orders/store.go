package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/wtaconnect/backoffice/internal/aws"
)

const (
	DefaultMovtoIndex = "idtenant-dt_movto-index"
	DefaultKeyIndex   = "chave_acesso-index"
)

// ErrConditionFailed is returned when a guarded write no longer matches the stored item.
var ErrConditionFailed = errors.New("conditional check failed")

// Query selects orders of one tenant. Zero values are omitted from the condition.
type Query struct {
	TenantID        int64
	From            time.Time // inclusive, on dt_movto
	To              time.Time // inclusive, on dt_movto
	Status          int
	Numero          int64
	NumeroEcommerce string
	OrderID         string
}

// Store encapsulates operations on the order table.
type Store struct {
	client     aws.DynamoDBAPI
	tableName  string
	movtoIndex string
	keyIndex   string
	nowFunc    func() time.Time
}

// NewStore creates a new order Store using the default index names.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:     client,
		tableName:  tableName,
		movtoIndex: DefaultMovtoIndex,
		keyIndex:   DefaultKeyIndex,
		nowFunc:    time.Now,
	}
}

// WithIndexes overrides the secondary index names.
func (s *Store) WithIndexes(movto, key string) *Store {
	if movto != "" {
		s.movtoIndex = movto
	}
	if key != "" {
		s.keyIndex = key
	}
	return s
}

// Query returns every record matching q, following pagination.
// A date bound routes the query through the dt_movto index.
func (s *Store) Query(ctx context.Context, q Query) ([]Record, error) {
	values := map[string]types.AttributeValue{
		":t": numberAttr(q.TenantID),
	}
	names := map[string]string{}
	input := &dyn.QueryInput{TableName: &s.tableName}

	keyCond := "idtenant = :t"
	switch {
	case !q.From.IsZero() && !q.To.IsZero():
		keyCond += " AND dt_movto BETWEEN :from AND :to"
		values[":from"] = numberAttr(Millis(q.From))
		values[":to"] = numberAttr(Millis(q.To))
	case !q.From.IsZero():
		keyCond += " AND dt_movto >= :from"
		values[":from"] = numberAttr(Millis(q.From))
	case !q.To.IsZero():
		keyCond += " AND dt_movto <= :to"
		values[":to"] = numberAttr(Millis(q.To))
	}
	if !q.From.IsZero() || !q.To.IsZero() {
		input.IndexName = &s.movtoIndex
	}

	var filters []string
	if q.Status != 0 {
		filters = append(filters, "#st = :status")
		names["#st"] = "status"
		values[":status"] = numberAttr(int64(q.Status))
	}
	if q.Numero != 0 {
		filters = append(filters, "numero = :numero")
		values[":numero"] = numberAttr(q.Numero)
	}
	if q.NumeroEcommerce != "" {
		filters = append(filters, "numero_ecommerce = :ne")
		values[":ne"] = &types.AttributeValueMemberS{Value: q.NumeroEcommerce}
	}
	if q.OrderID != "" {
		filters = append(filters, "orderId = :oid")
		values[":oid"] = &types.AttributeValueMemberS{Value: q.OrderID}
	}

	input.KeyConditionExpression = &keyCond
	input.ExpressionAttributeValues = values
	if len(filters) > 0 {
		input.FilterExpression = awsString(strings.Join(filters, " AND "))
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}
	return s.queryAll(ctx, input)
}

func (s *Store) queryAll(ctx context.Context, input *dyn.QueryInput) ([]Record, error) {
	out := []Record{}
	p := dyn.NewQueryPaginator(s.client, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query orders: %w", err)
		}
		var batch []Record
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal orders: %w", err)
		}
		out = append(out, batch...)
	}
	return out, nil
}

// Get fetches an order by tenant and id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, tenantID, id int64) (*Record, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key:       recordKey(tenantID, id),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var r Record
	if err := attributevalue.UnmarshalMap(out.Item, &r); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &r, nil
}

// deletableCondition re-checks Record.Linked and pending on the stored item.
// Both accept the same shapes: orderId missing, NULL or "", status as number or string.
const deletableCondition = "attribute_exists(id)" +
	" AND (attribute_not_exists(orderId) OR attribute_type(orderId, :null) OR orderId = :empty)" +
	" AND #st IN (:s1, :s2, :s500, :s1s, :s2s, :s500s)"

// DeletePending removes an order only while it is unlinked and pending.
// Returns ErrConditionFailed if the stored item no longer qualifies.
func (s *Store) DeletePending(ctx context.Context, tenantID, id int64) error {
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName:                &s.tableName,
		Key:                      recordKey(tenantID, id),
		ConditionExpression:      awsString(deletableCondition),
		ExpressionAttributeNames: map[string]string{"#st": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":null":  &types.AttributeValueMemberS{Value: "NULL"},
			":empty": &types.AttributeValueMemberS{Value: ""},
			":s1":    numberAttr(StatusProcessing),
			":s2":    numberAttr(StatusAwaitingNFe),
			":s500":  numberAttr(StatusError),
			":s1s":   &types.AttributeValueMemberS{Value: "1"},
			":s2s":   &types.AttributeValueMemberS{Value: "2"},
			":s500s": &types.AttributeValueMemberS{Value: "500"},
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return ErrConditionFailed
		}
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// FindByAccessKey looks up the tenant's order carrying the NFe access key.
// Returns (nil, nil) if not found.
func (s *Store) FindByAccessKey(ctx context.Context, tenantID int64, chave string) (*Record, error) {
	rs, err := s.queryAll(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		IndexName:              &s.keyIndex,
		KeyConditionExpression: awsString("chave_acesso = :k"),
		FilterExpression:       awsString("idtenant = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":k": &types.AttributeValueMemberS{Value: chave},
			":t": numberAttr(tenantID),
		},
	})
	if err != nil {
		return nil, err
	}
	if len(rs) == 0 {
		return nil, nil
	}
	return &rs[0], nil
}

// MarkCheckedOut stamps the checkout fields once. Returns ErrConditionFailed
// when the order is gone or was already checked out.
func (s *Store) MarkCheckedOut(ctx context.Context, tenantID, id int64, at, user string) error {
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:           &s.tableName,
		Key:                 recordKey(tenantID, id),
		UpdateExpression:    awsString("SET checkout_data = :d, checkout_status = :one, checkout_user = :u"),
		ConditionExpression: awsString("attribute_exists(id) AND (attribute_not_exists(checkout_status) OR checkout_status = :zero)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d":    &types.AttributeValueMemberS{Value: at},
			":u":    &types.AttributeValueMemberS{Value: user},
			":one":  numberAttr(1),
			":zero": numberAttr(0),
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return ErrConditionFailed
		}
		return fmt.Errorf("update checkout: %w", err)
	}
	return nil
}

func recordKey(tenantID, id int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"idtenant": numberAttr(tenantID),
		"id":       numberAttr(id),
	}
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException"
}

func numberAttr(n int64) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}
}

func awsString(s string) *string { return &s }
