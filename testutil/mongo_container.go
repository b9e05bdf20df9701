//coverage:ignore file

package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SetupMongoContainer starts a throwaway mongo and returns its connection uri
func SetupMongoContainer() (testcontainers.Container, string, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:6.0",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(time.Second * 30),
	}

	mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to start mongo container: %w", err)
	}

	endpoint, err := mongoC.Endpoint(ctx, "")
	if err != nil {
		return mongoC, "", err
	}

	return mongoC, fmt.Sprintf("mongodb://%s", endpoint), nil
}
