package tenants

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/wtaconnect/backoffice/internal/aws"
	"github.com/wtaconnect/backoffice/internal/winthor"
)

// ErrNotFound is returned by SetFlags when the tenant does not exist.
var ErrNotFound = errors.New("tenant not found")

// Store encapsulates operations on the tenant table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
}

func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{client: client, tableName: tableName}
}

// Get fetches a tenant by id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, id int64) (*Tenant, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key:       tenantKey(id),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var t Tenant
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, fmt.Errorf("unmarshal tenant: %w", err)
	}
	return &t, nil
}

// SetFlags writes the supplied flags as 0/1 and returns the updated tenant.
func (s *Store) SetFlags(ctx context.Context, id int64, u FlagsUpdate) (*Tenant, error) {
	if u.Empty() {
		return s.Get(ctx, id)
	}

	var sets []string
	values := map[string]types.AttributeValue{}
	add := func(attr string, v *bool) {
		if v == nil {
			return
		}
		sets = append(sets, attr+" = :"+attr)
		values[":"+attr] = flagAttr(*v)
	}
	add("wta_validar_etapa", u.ValidarEtapa)
	add("wta_validar_estoque", u.ValidarEstoque)
	add("wta_reprocessar_hora", u.ReprocessarHora)

	out, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:                 &s.tableName,
		Key:                       tenantKey(id),
		UpdateExpression:          awsString("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       awsString("attribute_exists(id)"),
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update tenant flags: %w", err)
	}
	var t Tenant
	if err := attributevalue.UnmarshalMap(out.Attributes, &t); err != nil {
		return nil, fmt.Errorf("unmarshal tenant: %w", err)
	}
	return &t, nil
}

// WinthorConfig exposes the tenant's ERP settings to the winthor client.
func (s *Store) WinthorConfig(ctx context.Context, tenantID int64) (*winthor.Config, error) {
	t, err := s.Get(ctx, tenantID)
	if err != nil || t == nil {
		return nil, err
	}
	return &winthor.Config{
		Host:    t.TotvsHost,
		Port:    string(t.TotvsPort),
		Login:   t.TotvsLogin,
		Usuario: t.TotvsUsuario,
	}, nil
}

func tenantKey(id int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberN{Value: strconv.FormatInt(id, 10)},
	}
}

func awsString(s string) *string { return &s }
