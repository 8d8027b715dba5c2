package history

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of the DynamoDB client the recorder uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// generationItem is the DynamoDB record for a generation attempt.
type generationItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	GSI1PK       string `dynamodbav:"GSI1PK"`
	GSI1SK       string `dynamodbav:"GSI1SK"`
	GenerationID string `dynamodbav:"generationId"`
	ArtistID     string `dynamodbav:"artistId"`
	Instructions string `dynamodbav:"instructions"`
	MediaName    string `dynamodbav:"mediaName,omitempty"`
	MediaMIME    string `dynamodbav:"mediaMime,omitempty"`
	Model        string `dynamodbav:"model,omitempty"`
	Text         string `dynamodbav:"text,omitempty"`
	ErrorMessage string `dynamodbav:"errorMessage,omitempty"`
	CreatedAt    string `dynamodbav:"createdAt"`
}

// Dynamo stores history in a DynamoDB table keyed by PK/SK with a GSI1
// index that lists generations newest first.
type Dynamo struct {
	client    DynamoAPI
	tableName string
}

// NewDynamo creates a DynamoDB recorder.
func NewDynamo(client DynamoAPI, tableName string) *Dynamo {
	return &Dynamo{client: client, tableName: tableName}
}

func (d *Dynamo) Record(ctx context.Context, r *Record) error {
	if err := prepare(r); err != nil {
		return err
	}
	created := r.CreatedAt.UTC().Format(timeLayout)
	item := generationItem{
		PK:           "GENERATION#" + r.ID,
		SK:           "METADATA",
		GSI1PK:       "GENERATIONS",
		GSI1SK:       created + "#" + r.ID,
		GenerationID: r.ID,
		ArtistID:     r.ArtistID,
		Instructions: r.Instructions,
		MediaName:    r.MediaName,
		MediaMIME:    r.MediaMIME,
		Model:        r.Model,
		Text:         r.Text,
		ErrorMessage: r.Error,
		CreatedAt:    created,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal generation item: %w", err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &d.tableName,
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return fmt.Errorf("put generation item: %w", err)
	}
	return nil
}

func (d *Dynamo) Recent(ctx context.Context, limit int) ([]Record, error) {
	result, err := d.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &d.tableName,
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "GENERATIONS"},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(normalizeLimit(limit))),
	})
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}

	var items []generationItem
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
		return nil, fmt.Errorf("unmarshal generation list: %w", err)
	}

	out := make([]Record, 0, len(items))
	for _, it := range items {
		created, err := time.Parse(timeLayout, it.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse createdAt %q: %w", it.CreatedAt, err)
		}
		out = append(out, Record{
			ID:           it.GenerationID,
			ArtistID:     it.ArtistID,
			Instructions: it.Instructions,
			MediaName:    it.MediaName,
			MediaMIME:    it.MediaMIME,
			Model:        it.Model,
			Text:         it.Text,
			Error:        it.ErrorMessage,
			CreatedAt:    created,
		})
	}
	return out, nil
}
