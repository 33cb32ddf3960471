// Package testhelpers starts backing services for integration tests.
package testhelpers

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go"
	tcelasticsearch "github.com/testcontainers/testcontainers-go/modules/elasticsearch"

	infraes "github.com/jonesrussell/north-cloud/films/infrastructure/elasticsearch"
)

const (
	// ElasticsearchImage is the image used by integration tests.
	ElasticsearchImage = "docker.elastic.co/elasticsearch/elasticsearch:8.11.0"

	testPassword = "changeme"
	testUsername = "elastic"
)

// ElasticsearchContainer manages a test Elasticsearch instance.
type ElasticsearchContainer struct {
	Container *tcelasticsearch.ElasticsearchContainer
	Address   string
	Username  string
	Password  string
	CACert    []byte
}

// StartElasticsearch starts a single-node Elasticsearch with security enabled.
// Stop it with Stop.
func StartElasticsearch(ctx context.Context) (*ElasticsearchContainer, error) {
	esContainer, err := tcelasticsearch.Run(
		ctx,
		ElasticsearchImage,
		tcelasticsearch.WithPassword(testPassword),
		testcontainers.WithEnv(map[string]string{"ES_JAVA_OPTS": "-Xms512m -Xmx512m"}),
	)
	if err != nil {
		if esContainer != nil {
			_ = esContainer.Terminate(ctx)
		}
		return nil, fmt.Errorf("failed to start Elasticsearch container: %w", err)
	}

	return &ElasticsearchContainer{
		Container: esContainer,
		Address:   esContainer.Settings.Address,
		Username:  testUsername,
		Password:  esContainer.Settings.Password,
		CACert:    esContainer.Settings.CACert,
	}, nil
}

// ClientConfig returns a client configuration pointing at the container.
func (e *ElasticsearchContainer) ClientConfig() infraes.Config {
	return infraes.Config{
		URL:      e.Address,
		Username: e.Username,
		Password: e.Password,
		CACert:   e.CACert,
	}
}

// Stop stops and removes the Elasticsearch container.
func (e *ElasticsearchContainer) Stop(ctx context.Context) error {
	if e.Container == nil {
		return nil
	}
	return e.Container.Terminate(ctx)
}
