package smocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type PingerMock struct {
	mock.Mock
}

func (p *PingerMock) Ping(ctx context.Context) error {
	args := p.Called(ctx)
	return args.Error(0) //nolint:wrapcheck
}
