package ddb

import (
	"context"
	"time"

	"storefront/internal/types"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbTypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// KVStore keeps each key as one item: PK=CART#<key>, SK=STATE, with the
// value in a binary attribute.
type KVStore struct {
	table string
	cli   *dynamodb.Client
}

type kvItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Value     []byte `dynamodbav:"value"`
	UpdatedAt int64  `dynamodbav:"updated_at"`
}

// NewKVStore creates the table if it does not exist yet.
func NewKVStore(ctx context.Context, table string, cli *dynamodb.Client) (*KVStore, error) {
	if err := createTableIfNotExists(ctx, cli, table); err != nil {
		return nil, err
	}
	return &KVStore{table: table, cli: cli}, nil
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.cli.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &s.table,
		Key:            itemKey(key),
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, types.ErrNotFound
	}
	var it kvItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, err
	}
	return it.Value, nil
}

func (s *KVStore) Put(ctx context.Context, key string, value []byte) error {
	item, err := attributevalue.MarshalMap(kvItem{
		PK:        pkCart(key),
		SK:        skState(),
		Value:     value,
		UpdatedAt: time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	_, err = s.cli.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.table,
		Item:      item,
	})
	return err
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	_, err := s.cli.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.table,
		Key:       itemKey(key),
	})
	return err
}

func itemKey(key string) map[string]ddbTypes.AttributeValue {
	return map[string]ddbTypes.AttributeValue{
		"PK": &ddbTypes.AttributeValueMemberS{Value: pkCart(key)},
		"SK": &ddbTypes.AttributeValueMemberS{Value: skState()},
	}
}
