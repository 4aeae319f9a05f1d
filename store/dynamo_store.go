package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"paldeck_server/models"
)

// DynamoStore implements Store on DynamoDB
type DynamoStore struct {
	Dynamo *DynamoService
	Tables Tables
	log    *zap.Logger
}

// NewDynamoStore wires a DynamoStore on top of a DynamoDB client
func NewDynamoStore(client DynamoAPI, tables Tables, log *zap.Logger) *DynamoStore {
	return &DynamoStore{
		Dynamo: &DynamoService{Client: client, Log: log},
		Tables: tables,
		log:    log,
	}
}

// CreateAccount stores a new account, failing with ErrConditionFailed if the email is taken
func (s *DynamoStore) CreateAccount(ctx context.Context, acct models.Account) error {
	return s.Dynamo.PutItemIfNotExists(ctx, s.Tables.Accounts, acct, "email")
}

// GetAccountByEmail fetches an account by its email key
func (s *DynamoStore) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var acct models.Account
	if err := s.Dynamo.GetItem(ctx, s.Tables.Accounts, stringKey("email", email), &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

// CreateProfile writes a profile only if none exists under its id
func (s *DynamoStore) CreateProfile(ctx context.Context, p models.UserProfile) error {
	return s.Dynamo.PutItemIfNotExists(ctx, s.Tables.Profiles, p, "id")
}

// PutProfile writes the full profile, replacing any previous version
func (s *DynamoStore) PutProfile(ctx context.Context, p models.UserProfile) error {
	return s.Dynamo.PutItem(ctx, s.Tables.Profiles, p)
}

// GetProfile fetches a profile by id
func (s *DynamoStore) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := s.Dynamo.GetItem(ctx, s.Tables.Profiles, stringKey("id", id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProfiles scans one page of profiles. The cursor is the id of the last profile
// of the previous page.
func (s *DynamoStore) ListProfiles(ctx context.Context, cursor string, limit int) ([]models.UserProfile, string, error) {
	var startKey map[string]types.AttributeValue
	if cursor != "" {
		startKey = stringKey("id", cursor)
	}

	items, lastKey, err := s.Dynamo.ScanPage(ctx, s.Tables.Profiles, startKey, int32(limit))
	if err != nil {
		return nil, "", err
	}

	var profiles []models.UserProfile
	if err := attributevalue.UnmarshalListOfMaps(items, &profiles); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal profiles: %w", err)
	}

	next := ""
	if id, ok := lastKey["id"].(*types.AttributeValueMemberS); ok {
		next = id.Value
	}
	return profiles, next, nil
}

// PutSwipe records a swipe unless the swiper already swiped on the same target
func (s *DynamoStore) PutSwipe(ctx context.Context, sw models.SwipeRecord) error {
	sw.PK = models.SwipePK(sw.Swiper)
	sw.SK = models.SwipeSK(sw.Swiped)
	return s.Dynamo.PutItemIfNotExists(ctx, s.Tables.Swipes, sw, "PK")
}

// GetSwipe reads the swipe of swiper on swiped
func (s *DynamoStore) GetSwipe(ctx context.Context, swiper, swiped string) (*models.SwipeRecord, error) {
	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: models.SwipePK(swiper)},
		"SK": &types.AttributeValueMemberS{Value: models.SwipeSK(swiped)},
	}

	var sw models.SwipeRecord
	if err := s.Dynamo.GetItem(ctx, s.Tables.Swipes, key, &sw); err != nil {
		return nil, err
	}
	return &sw, nil
}

// ListSwipedIDs returns every profile id the swiper has swiped on, in either direction
func (s *DynamoStore) ListSwipedIDs(ctx context.Context, swiper string) (map[string]struct{}, error) {
	items, err := s.Dynamo.QueryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Swipes),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: models.SwipePK(swiper)},
		},
		ProjectionExpression: aws.String("swiped"),
	})
	if err != nil {
		return nil, err
	}

	ids := make(map[string]struct{}, len(items))
	for _, item := range items {
		if v, ok := item["swiped"].(*types.AttributeValueMemberS); ok {
			ids[v.Value] = struct{}{}
		}
	}
	return ids, nil
}

// CreateMatch inserts the match under its pair-derived id. When another request
// already created it, the stored record wins.
func (s *DynamoStore) CreateMatch(ctx context.Context, m models.MatchRecord) (models.MatchRecord, bool, error) {
	err := s.Dynamo.PutItemIfNotExists(ctx, s.Tables.Matches, m, "id")
	if err == nil {
		return m, true, nil
	}
	if !errors.Is(err, ErrConditionFailed) {
		return models.MatchRecord{}, false, err
	}

	existing, err := s.GetMatch(ctx, m.ID)
	if err != nil {
		return models.MatchRecord{}, false, fmt.Errorf("failed to read existing match: %w", err)
	}
	s.log.Info("ℹ️ match already existed", zap.String("matchId", m.ID))
	return *existing, false, nil
}

// GetMatch fetches a match by id
func (s *DynamoStore) GetMatch(ctx context.Context, id string) (*models.MatchRecord, error) {
	var m models.MatchRecord
	if err := s.Dynamo.GetItem(ctx, s.Tables.Matches, stringKey("id", id), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMatchesForUser queries both participant indexes and merges the results
func (s *DynamoStore) ListMatchesForUser(ctx context.Context, userID string) ([]models.MatchRecord, error) {
	values := map[string]types.AttributeValue{
		":userId": &types.AttributeValueMemberS{Value: userID},
	}

	seen := map[string]struct{}{}
	var matches []models.MatchRecord
	for index, attr := range map[string]string{models.User1Index: "user1", models.User2Index: "user2"} {
		items, err := s.Dynamo.QueryItemsWithIndex(ctx, s.Tables.Matches, index, "#u = :userId", values, map[string]string{"#u": attr})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch matches: %w", err)
		}

		for _, item := range items {
			var m models.MatchRecord
			if err := attributevalue.UnmarshalMap(item, &m); err != nil {
				s.log.Warn("⚠️ skipping undecodable match", zap.Error(err))
				continue
			}
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			matches = append(matches, m)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

// PutMessage stores a chat message
func (s *DynamoStore) PutMessage(ctx context.Context, m models.MessageRecord) error {
	return s.Dynamo.PutItem(ctx, s.Tables.Messages, m)
}

// ListMessages returns every message of a match, oldest first
func (s *DynamoStore) ListMessages(ctx context.Context, matchID string) ([]models.MessageRecord, error) {
	items, err := s.Dynamo.QueryAll(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(s.Tables.Messages),
		KeyConditionExpression:   aws.String("#matchId = :matchId"),
		ExpressionAttributeNames: map[string]string{"#matchId": "matchId"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":matchId": &types.AttributeValueMemberS{Value: matchID},
		},
		ScanIndexForward: aws.Bool(true),
		ConsistentRead:   aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}

	var messages []models.MessageRecord
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}
	return messages, nil
}

// MarkMessagesRead flips read on every unread message of the match that readerID did not send
func (s *DynamoStore) MarkMessagesRead(ctx context.Context, matchID, readerID string) (int, error) {
	items, err := s.Dynamo.QueryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Messages),
		KeyConditionExpression: aws.String("#matchId = :matchId"),
		FilterExpression:       aws.String("#sender <> :reader AND #read = :false"),
		ExpressionAttributeNames: map[string]string{
			"#matchId": "matchId",
			"#sender":  "sender",
			"#read":    "read",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":matchId": &types.AttributeValueMemberS{Value: matchID},
			":reader":  &types.AttributeValueMemberS{Value: readerID},
			":false":   &types.AttributeValueMemberBOOL{Value: false},
		},
		ProjectionExpression: aws.String("#matchId, id"),
		ConsistentRead:       aws.Bool(true),
	})
	if err != nil {
		return 0, err
	}

	var errs []error
	updated := 0
	for _, item := range items {
		key := map[string]types.AttributeValue{
			"matchId": item["matchId"],
			"id":      item["id"],
		}
		_, err := s.Dynamo.UpdateItem(ctx, s.Tables.Messages, "SET #read = :true", key,
			map[string]types.AttributeValue{":true": &types.AttributeValueMemberBOOL{Value: true}},
			map[string]string{"#read": "read"},
		)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		updated++
	}
	return updated, errors.Join(errs...)
}
