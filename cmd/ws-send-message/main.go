// Package main implements the WebSocket message broadcasting Lambda.
// It fans out ledger events to connected WebSocket clients: landmark
// latches go to everyone, likes go to the memory owner.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwTypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var dynamoClient *dynamodb.Client

// BroadcastMessage represents a message to be sent to WebSocket clients
type BroadcastMessage struct {
	EventType        string                 `json:"event_type"`
	TargetIdentity   string                 `json:"target_identity,omitempty"`
	TargetIdentities []string               `json:"target_identities,omitempty"`
	Broadcast        bool                   `json:"broadcast,omitempty"`
	Payload          map[string]interface{} `json:"payload"`
}

// WebSocketMessage represents the message format sent to clients
type WebSocketMessage struct {
	Type      string                 `json:"type"`
	Timestamp int64                  `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func init() {
	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	dynamoClient = dynamodb.NewFromConfig(cfg)

	log.Println("WebSocket send-message handler initialized")
}

func connectionsTableName() string {
	if name := os.Getenv("CONNECTIONS_TABLE_NAME"); name != "" {
		return name
	}
	if name := os.Getenv("CONNECTIONS_TABLE"); name != "" {
		return name
	}
	return "memorylane-connections"
}

// initializeAPIGatewayClient creates an API Gateway Management API client for the specific endpoint
func initializeAPIGatewayClient(endpoint string) *apigatewaymanagementapi.Client {
	cfg, _ := config.LoadDefaultConfig(context.Background())

	return apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s", endpoint))
	})
}

// getConnectionsForIdentity retrieves all active connections for an identity
func getConnectionsForIdentity(ctx context.Context, identity string) ([]string, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(connectionsTableName()),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :identitypk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":identitypk": &types.AttributeValueMemberS{Value: fmt.Sprintf("IDENTITY#%s", identity)},
		},
	}

	result, err := dynamoClient.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}

	var connectionIDs []string
	for _, item := range result.Items {
		if connID, ok := item["ConnectionID"].(*types.AttributeValueMemberS); ok {
			connectionIDs = append(connectionIDs, connID.Value)
		}
	}

	return connectionIDs, nil
}

// getAllConnections retrieves all active connections for broadcast
func getAllConnections(ctx context.Context) (map[string]string, error) {
	connections := make(map[string]string) // connectionID -> endpoint

	input := &dynamodb.ScanInput{
		TableName: aws.String(connectionsTableName()),
	}

	paginator := dynamodb.NewScanPaginator(dynamoClient, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connections: %w", err)
		}

		for _, item := range page.Items {
			connID, _ := item["ConnectionID"].(*types.AttributeValueMemberS)
			endpoint, _ := item["Endpoint"].(*types.AttributeValueMemberS)
			if connID != nil && endpoint != nil {
				connections[connID.Value] = endpoint.Value
			}
		}
	}

	return connections, nil
}

// sendMessageToConnection sends a message to a specific WebSocket connection
func sendMessageToConnection(ctx context.Context, apiClient *apigatewaymanagementapi.Client,
	connectionID string, message []byte) error {

	input := &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connectionID),
		Data:         message,
	}

	_, err := apiClient.PostToConnection(ctx, input)
	if err != nil {
		var goneErr *apigwTypes.GoneException
		if errors.As(err, &goneErr) {
			// Connection is stale, remove and move on
			log.Printf("Connection %s is gone, marking for cleanup", connectionID)
			removeStaleConnection(ctx, connectionID)
			return nil
		}
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// removeStaleConnection removes a stale connection from DynamoDB
func removeStaleConnection(ctx context.Context, connectionID string) {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(connectionsTableName()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("CONNECTION#%s", connectionID)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	}

	_, err := dynamoClient.DeleteItem(ctx, input)
	if err != nil {
		log.Printf("Failed to remove stale connection %s: %v", connectionID, err)
	} else {
		log.Printf("Removed stale connection %s", connectionID)
	}
}

// handleBroadcast sends a message to the targeted WebSocket connections
func handleBroadcast(ctx context.Context, msg BroadcastMessage) error {
	wsMessage := WebSocketMessage{
		Type:      msg.EventType,
		Timestamp: time.Now().Unix(),
		Data:      msg.Payload,
	}

	messageJSON, err := json.Marshal(wsMessage)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	targetConnections := make(map[string]string) // connectionID -> endpoint

	defaultEndpoint := os.Getenv("WEBSOCKET_ENDPOINT")

	if msg.Broadcast {
		targetConnections, err = getAllConnections(ctx)
		if err != nil {
			return fmt.Errorf("failed to get all connections: %w", err)
		}
	} else {
		identities := msg.TargetIdentities
		if msg.TargetIdentity != "" {
			identities = append(identities, msg.TargetIdentity)
		}

		for _, identity := range identities {
			connectionIDs, err := getConnectionsForIdentity(ctx, identity)
			if err != nil {
				log.Printf("Failed to get connections for identity %s: %v", identity, err)
				continue
			}

			for _, connID := range connectionIDs {
				targetConnections[connID] = defaultEndpoint
			}
		}
	}

	// Group connections by endpoint so each API Gateway client is built once
	endpointGroups := make(map[string][]string)
	for connID, endpoint := range targetConnections {
		endpointGroups[endpoint] = append(endpointGroups[endpoint], connID)
	}

	successCount := 0
	failCount := 0

	for endpoint, connectionIDs := range endpointGroups {
		apiClient := initializeAPIGatewayClient(endpoint)

		for _, connID := range connectionIDs {
			if err := sendMessageToConnection(ctx, apiClient, connID, messageJSON); err != nil {
				log.Printf("Failed to send to connection %s: %v", connID, err)
				failCount++
			} else {
				successCount++
			}
		}
	}

	log.Printf("Broadcast complete: %d successful, %d failed", successCount, failCount)

	if failCount > 0 && successCount == 0 {
		return fmt.Errorf("all message sends failed")
	}

	return nil
}

// targetForLedgerEvent decides who should receive each ledger event.
// Landmark latches are interesting to everyone nearby; the rest are
// delivered to the parties the event names.
func targetForLedgerEvent(detailType string, payload map[string]interface{}) BroadcastMessage {
	msg := BroadcastMessage{
		EventType: detailType,
		Payload:   payload,
	}

	switch detailType {
	case "location.became_landmark":
		msg.Broadcast = true
	case "memory.stored":
		if owner, ok := payload["owner"].(string); ok && owner != "" {
			msg.TargetIdentity = owner
		} else {
			msg.Broadcast = true
		}
	case "memory.unlocked":
		if accessor, ok := payload["accessor"].(string); ok && accessor != "" {
			msg.TargetIdentity = accessor
		}
	case "memory.liked":
		if liker, ok := payload["liker"].(string); ok && liker != "" {
			msg.TargetIdentity = liker
		}
	default:
		msg.Broadcast = true
	}

	return msg
}

// handler processes different types of events for WebSocket broadcasting
func handler(ctx context.Context, event json.RawMessage) error {
	log.Printf("Received event for broadcasting")

	// EventBridge delivery of ledger events
	var cloudWatchEvent events.CloudWatchEvent
	if err := json.Unmarshal(event, &cloudWatchEvent); err == nil && cloudWatchEvent.DetailType != "" {
		log.Printf("Processing ledger event: %s", cloudWatchEvent.DetailType)

		var payload map[string]interface{}
		if err := json.Unmarshal(cloudWatchEvent.Detail, &payload); err != nil {
			return fmt.Errorf("failed to parse event detail: %w", err)
		}

		return handleBroadcast(ctx, targetForLedgerEvent(cloudWatchEvent.DetailType, payload))
	}

	// Direct broadcast message
	var broadcastMsg BroadcastMessage
	if err := json.Unmarshal(event, &broadcastMsg); err == nil && broadcastMsg.EventType != "" {
		return handleBroadcast(ctx, broadcastMsg)
	}

	// SQS batch of broadcast messages
	var sqsEvent events.SQSEvent
	if err := json.Unmarshal(event, &sqsEvent); err == nil && len(sqsEvent.Records) > 0 {
		for _, record := range sqsEvent.Records {
			var msg BroadcastMessage
			if err := json.Unmarshal([]byte(record.Body), &msg); err != nil {
				log.Printf("Failed to parse SQS message: %v", err)
				continue
			}

			if err := handleBroadcast(ctx, msg); err != nil {
				log.Printf("Failed to broadcast message: %v", err)
			}
		}
		return nil
	}

	return fmt.Errorf("unable to parse event")
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		log.Println("Starting WebSocket send-message Lambda")
		lambda.Start(handler)
	} else {
		log.Println("Running in local test mode")

		testMsg := BroadcastMessage{
			EventType:      "memory.liked",
			TargetIdentity: "test-identity",
			Payload: map[string]interface{}{
				"memory_id":   "test-memory-123",
				"liker":       "another-identity",
				"total_likes": 3,
			},
		}

		testJSON, _ := json.Marshal(testMsg)

		if err := handler(context.Background(), testJSON); err != nil {
			log.Fatalf("Test message processing failed: %v", err)
		}

		log.Println("Test message processed successfully")
	}
}
