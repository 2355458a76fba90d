package auth

import (
	"context"
	"errors"
	"fmt"

	"booking-service/internal/service"

	authv1 "github.com/Anabol1ks/orderhub-pkg-proto/proto/auth/v1"
	commonv1 "github.com/Anabol1ks/orderhub-pkg-proto/proto/common/v1"
	"github.com/google/uuid"
	"google.golang.org/grpc"
)

// IntrospectClient is the slice of authv1.AuthServiceClient used here.
type IntrospectClient interface {
	Introspect(ctx context.Context, in *authv1.IntrospectRequest, opts ...grpc.CallOption) (*authv1.IntrospectResponse, error)
}

var ErrInactiveToken = errors.New("invalid or inactive token")

type Identity struct {
	UserID uuid.UUID
	Role   service.Role
}

// Client resolves bearer tokens through the auth service.
type Client struct {
	grpc IntrospectClient
}

func NewClient(grpcClient IntrospectClient) *Client { return &Client{grpc: grpcClient} }

func (c *Client) Introspect(ctx context.Context, token string) (*Identity, error) {
	resp, err := c.grpc.Introspect(ctx, &authv1.IntrospectRequest{AccessToken: token})
	if err != nil {
		return nil, fmt.Errorf("introspect: %w", err)
	}
	if resp == nil || !resp.GetActive() || resp.GetUserId().GetValue() == "" {
		return nil, ErrInactiveToken
	}
	uid, err := uuid.Parse(resp.GetUserId().GetValue())
	if err != nil {
		return nil, fmt.Errorf("%w: bad user id", ErrInactiveToken)
	}

	id := &Identity{UserID: uid, Role: service.RoleCustomer}
	if role := resp.GetRole(); role != commonv1.Role_ROLE_UNSPECIFIED {
		id.Role = service.Role(role.String())
	}
	return id, nil
}
