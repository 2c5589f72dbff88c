package services

import (
	"context"
	"fmt"

	"github.com/fsdevblog/linkresolver/internal/repositories"
)

type PingService struct {
	conn repositories.Pinger
}

func NewPingService(conn repositories.Pinger) *PingService {
	return &PingService{conn: conn}
}

// CheckConnection проверяет доступность хранилища.
func (s *PingService) CheckConnection(ctx context.Context) error {
	if err := s.conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping error: %w", err)
	}
	return nil
}
