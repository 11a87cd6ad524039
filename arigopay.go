/*
Copyright 2024 Arigo Pay Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package arigopay

import (
	"embed"
	"fmt"
	"sort"
	"sync"

	"github.com/arigohub24/arigo-pay/config"
	"github.com/arigohub24/arigo-pay/database"
	redis_db "github.com/arigohub24/arigo-pay/internal/redis-db"
	"github.com/arigohub24/arigo-pay/model"
	"github.com/redis/go-redis/v9"
)

// Arigopay represents the main struct for the Arigo Pay wizard engine.
type Arigopay struct {
	queue      *Queue
	redis      redis.UniversalClient
	datasource database.IDataSource
	gateway    PaymentGateway
	authorizer AuthorizationBackend

	mu    sync.RWMutex
	flows map[string]*model.WizardDefinition
}

//go:embed sql/*.sql
var SQLFiles embed.FS

// NewArigopay initializes a new engine instance with the provided database
// datasource. It fetches the configuration and wires the Redis client, the
// task queue and the external gateway clients, then registers the built-in
// payment flows.
func NewArigopay(db database.IDataSource) (*Arigopay, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	redisClient, err := redis_db.NewRedisClient([]string{fmt.Sprintf("redis://%s", configuration.Redis.Dns)})
	if err != nil {
		return nil, err
	}
	newQueue := NewQueue(configuration)

	a := &Arigopay{
		datasource: db,
		queue:      newQueue,
		redis:      redisClient.Client(),
		gateway:    NewHTTPPaymentGateway(configuration.PaymentGateway),
		authorizer: NewHTTPAuthorizationBackend(configuration.AuthBackend),
		flows:      make(map[string]*model.WizardDefinition),
	}
	for _, definition := range BuiltinFlows() {
		if err := a.RegisterFlow(definition); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// RegisterFlow validates a wizard definition and adds it to the registry.
// Registering a flow ID twice replaces the earlier definition.
func (a *Arigopay) RegisterFlow(definition *model.WizardDefinition) error {
	if err := definition.Validate(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.flows[definition.FlowID] = definition
	return nil
}

// GetFlow returns the definition registered under flowID.
func (a *Arigopay) GetFlow(flowID string) (*model.WizardDefinition, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	definition, ok := a.flows[flowID]
	if !ok {
		return nil, fmt.Errorf("flow '%s' is not registered", flowID)
	}
	return definition, nil
}

// ListFlows returns all registered definitions sorted by flow ID.
func (a *Arigopay) ListFlows() []*model.WizardDefinition {
	a.mu.RLock()
	defer a.mu.RUnlock()
	definitions := make([]*model.WizardDefinition, 0, len(a.flows))
	for _, definition := range a.flows {
		definitions = append(definitions, definition)
	}
	sort.Slice(definitions, func(i, j int) bool {
		return definitions[i].FlowID < definitions[j].FlowID
	})
	return definitions
}
