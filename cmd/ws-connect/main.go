// Package main implements the WebSocket connection Lambda handler.
// Clients subscribe here to receive ledger events (stored memories, likes,
// landmark latches) in real time.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"memorylane-backend/pkg/auth"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	dynamoClient *dynamodb.Client
	validator    *auth.JWTValidator
)

// Connection represents a WebSocket connection record
type Connection struct {
	ConnectionID string    `json:"connection_id"`
	Identity     string    `json:"identity"`
	ConnectedAt  time.Time `json:"connected_at"`
	Endpoint     string    `json:"endpoint"`
	TTL          int64     `json:"ttl"`
}

func init() {
	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	dynamoClient = dynamodb.NewFromConfig(cfg)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret != "" {
		validator, err = auth.NewJWTValidator(auth.JWTConfig{
			SigningMethod: "HS256",
			SecretKey:     jwtSecret,
			Issuer:        os.Getenv("JWT_ISSUER"),
		})
		if err != nil {
			log.Fatalf("Failed to create JWT validator: %v", err)
		}
	}

	log.Println("WebSocket connect handler initialized")
}

// validateToken validates the token and extracts the caller identity
func validateToken(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("missing authentication token")
	}
	if validator == nil {
		return "", fmt.Errorf("JWT validation not configured")
	}

	claims, err := validator.ValidateToken(token)
	if err != nil {
		return "", err
	}
	return claims.Identity, nil
}

func connectionsTableName() string {
	if name := os.Getenv("CONNECTIONS_TABLE"); name != "" {
		return name
	}
	return "memorylane-connections"
}

// storeConnection saves the connection information to DynamoDB
func storeConnection(ctx context.Context, conn Connection) error {
	// Expire abandoned connections after 24 hours
	conn.TTL = time.Now().Add(24 * time.Hour).Unix()

	item := map[string]types.AttributeValue{
		"PK":           &types.AttributeValueMemberS{Value: fmt.Sprintf("CONNECTION#%s", conn.ConnectionID)},
		"SK":           &types.AttributeValueMemberS{Value: "METADATA"},
		"ConnectionID": &types.AttributeValueMemberS{Value: conn.ConnectionID},
		"Identity":     &types.AttributeValueMemberS{Value: conn.Identity},
		"GSI1PK":       &types.AttributeValueMemberS{Value: fmt.Sprintf("IDENTITY#%s", conn.Identity)},
		"GSI1SK":       &types.AttributeValueMemberS{Value: fmt.Sprintf("CONNECTION#%s", conn.ConnectionID)},
		"ConnectedAt":  &types.AttributeValueMemberS{Value: conn.ConnectedAt.Format(time.RFC3339)},
		"Endpoint":     &types.AttributeValueMemberS{Value: conn.Endpoint},
		"TTL":          &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", conn.TTL)},
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(connectionsTableName()),
		Item:      item,
	}

	if _, err := dynamoClient.PutItem(ctx, input); err != nil {
		return fmt.Errorf("failed to store connection: %w", err)
	}

	log.Printf("Stored connection %s for identity %s", conn.ConnectionID, conn.Identity)
	return nil
}

// handler processes WebSocket connection requests
func handler(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	log.Printf("WebSocket connect request from connection: %s", request.RequestContext.ConnectionID)

	token := request.QueryStringParameters["token"]
	if token == "" {
		if authHeader := request.Headers["Authorization"]; authHeader != "" {
			token = authHeader
		}
	}

	identity, err := validateToken(token)
	if err != nil {
		log.Printf("Authentication failed: %v", err)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusUnauthorized,
			Body:       `{"error": "unauthorized"}`,
		}, nil
	}

	connection := Connection{
		ConnectionID: request.RequestContext.ConnectionID,
		Identity:     identity,
		ConnectedAt:  time.Now(),
		Endpoint:     fmt.Sprintf("%s/%s", request.RequestContext.DomainName, request.RequestContext.Stage),
	}

	if err := storeConnection(ctx, connection); err != nil {
		log.Printf("Failed to store connection: %v", err)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"error": "internal server error"}`,
		}, nil
	}

	welcomeMsg := map[string]interface{}{
		"type":         "connection_established",
		"connectionId": connection.ConnectionID,
		"identity":     identity,
		"timestamp":    time.Now().Unix(),
	}

	welcomeJSON, _ := json.Marshal(welcomeMsg)

	log.Printf("WebSocket connection established for identity %s", identity)

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Body:       string(welcomeJSON),
	}, nil
}

func main() {
	lambda.Start(handler)
}
