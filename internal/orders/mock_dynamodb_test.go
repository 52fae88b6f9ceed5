package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// tableMock is an in-memory order table. It understands the key and filter
// expressions issued by Store, not DynamoDB expressions in general.
type tableMock struct {
	mu          sync.Mutex
	items       map[string]map[string]types.AttributeValue
	queries     []*dyn.QueryInput
	deleteCalls int
	updateCalls int
	queryErr    error
}

func newTableMock() *tableMock {
	return &tableMock{items: map[string]map[string]types.AttributeValue{}}
}

func itemKey(tenant, id int64) string { return fmt.Sprintf("%d/%d", tenant, id) }

func (m *tableMock) put(t *testing.T, r Record) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(r)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	m.items[itemKey(r.TenantID, r.ID)] = item
	return item
}

func num(av types.AttributeValue) (int64, bool) {
	n, ok := av.(*types.AttributeValueMemberN)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(n.Value, 10, 64)
	return v, err == nil
}

func str(av types.AttributeValue) (string, bool) {
	s, ok := av.(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}
	return s.Value, true
}

func (m *tableMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tenant, _ := num(params.Key["idtenant"])
	id, _ := num(params.Key["id"])
	item, ok := m.items[itemKey(tenant, id)]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *tableMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	return nil, errors.New("not implemented")
}

func (m *tableMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	tenant, _ := num(params.Key["idtenant"])
	id, _ := num(params.Key["id"])
	item, ok := m.items[itemKey(tenant, id)]
	if !ok {
		return nil, &types.ConditionalCheckFailedException{}
	}
	if st, ok := num(item["checkout_status"]); ok && st != 0 {
		return nil, &types.ConditionalCheckFailedException{}
	}
	vals := params.ExpressionAttributeValues
	item["checkout_data"] = vals[":d"]
	item["checkout_user"] = vals[":u"]
	item["checkout_status"] = vals[":one"]
	return &dyn.UpdateItemOutput{}, nil
}

func (m *tableMock) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	tenant, _ := num(params.Key["idtenant"])
	id, _ := num(params.Key["id"])
	k := itemKey(tenant, id)
	item, ok := m.items[k]
	if !ok {
		return nil, &types.ConditionalCheckFailedException{}
	}
	switch oid := item["orderId"].(type) {
	case nil, *types.AttributeValueMemberNULL:
	case *types.AttributeValueMemberS:
		if oid.Value != "" {
			return nil, &types.ConditionalCheckFailedException{}
		}
	default:
		return nil, &types.ConditionalCheckFailedException{}
	}
	st, ok := num(item["status"])
	if !ok {
		if s, isStr := str(item["status"]); isStr {
			st, _ = strconv.ParseInt(s, 10, 64)
		}
	}
	if st != StatusProcessing && st != StatusAwaitingNFe && st != StatusError {
		return nil, &types.ConditionalCheckFailedException{}
	}
	delete(m.items, k)
	return &dyn.DeleteItemOutput{}, nil
}

func (m *tableMock) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, params)
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	vals := params.ExpressionAttributeValues
	keyCond := ""
	if params.KeyConditionExpression != nil {
		keyCond = *params.KeyConditionExpression
	}

	var keys []string
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []map[string]types.AttributeValue
	for _, k := range keys {
		item := m.items[k]
		if want, ok := num(vals[":t"]); ok {
			if got, _ := num(item["idtenant"]); got != want {
				continue
			}
		}
		if want, ok := str(vals[":k"]); ok && strings.Contains(keyCond, "chave_acesso") {
			if got, _ := str(item["chave_acesso"]); got != want {
				continue
			}
		}
		movto, _ := num(item["dt_movto"])
		if from, ok := num(vals[":from"]); ok && movto < from {
			continue
		}
		if to, ok := num(vals[":to"]); ok && movto > to {
			continue
		}
		if want, ok := num(vals[":status"]); ok {
			if got, _ := num(item["status"]); got != want {
				continue
			}
		}
		if want, ok := num(vals[":numero"]); ok {
			if got, _ := num(item["numero"]); got != want {
				continue
			}
		}
		if want, ok := str(vals[":ne"]); ok {
			if got, _ := str(item["numero_ecommerce"]); got != want {
				continue
			}
		}
		if want, ok := str(vals[":oid"]); ok {
			if got, _ := str(item["orderId"]); got != want {
				continue
			}
		}
		out = append(out, item)
	}
	return &dyn.QueryOutput{Items: out, Count: int32(len(out))}, nil
}
