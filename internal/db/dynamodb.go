package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/paperboy/internal/models"
)

const FAVORITES_TABLE_NAME = "Favorites"

// DynamoFavorites stores one item per favorite keyed by "id". Insertion order
// is recovered from saved_at.
type DynamoFavorites struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoFavorites(client *dynamodb.Client, table string) *DynamoFavorites {
	if table == "" {
		table = FAVORITES_TABLE_NAME
	}
	return &DynamoFavorites{client: client, table: table}
}

// EnsureTable creates the favorites table when it does not exist yet.
func (d *DynamoFavorites) EnsureTable(ctx context.Context) error {
	_, err := d.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(d.table)})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("[DynamoDB] describe %s: %w", d.table, err)
	}

	slog.Info("[DynamoDB] Creating favorites table", slog.String("table", d.table))
	_, err = d.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(d.table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] create %s: %w", d.table, err)
	}
	return nil
}

func (d *DynamoFavorites) Insert(ctx context.Context, fav models.Favorite) error {
	item, err := attributevalue.MarshalMap(fav)
	if err != nil {
		return fmt.Errorf("[DynamoDB] marshal favorite: %w", err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(d.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var exists *types.ConditionalCheckFailedException
		if errors.As(err, &exists) {
			return nil
		}
		return fmt.Errorf("[DynamoDB] Failed to put favorite: %w", err)
	}
	return nil
}

func (d *DynamoFavorites) Delete(ctx context.Context, id string) error {
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to delete favorite: %w", err)
	}
	return nil
}

func (d *DynamoFavorites) All(ctx context.Context) ([]models.Favorite, error) {
	favs := []models.Favorite{}
	paginator := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{
		TableName: aws.String(d.table),
	})

	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Scan for favorites failed: %w", err)
		}
		var page []models.Favorite
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			slog.Error("[DynamoDB] Unable to unmarshal favorites page", slog.String("error", err.Error()))
			return nil, err
		}
		favs = append(favs, page...)
	}

	sort.SliceStable(favs, func(i, j int) bool {
		if favs[i].SavedAt.Equal(favs[j].SavedAt) {
			return favs[i].ID < favs[j].ID
		}
		return favs[i].SavedAt.Before(favs[j].SavedAt)
	})
	return favs, nil
}
