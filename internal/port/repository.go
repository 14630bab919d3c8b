package port

import (
	"github.com/vertextoedge/netfetch/internal/domain/repository"
)

// TaskRepository is an alias to domain repository interface
type TaskRepository = repository.TaskRepository

// Store is an alias to domain repository interface
type Store = repository.Store
