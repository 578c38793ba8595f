package internal

import (
	"context"
	"errors"

	"connectrpc.com/connect"
	"connectrpc.com/grpchealth"

	"github.com/kazz187/wbsgantt/pkg/storage"
)

// ProjectServiceName is the service reported by the gRPC health check besides
// the server as a whole.
const ProjectServiceName = "wbsgantt.v1.ProjectService"

const healthProbePath = "projects"

// StorageHealthChecker reports SERVING while the project storage answers.
type StorageHealthChecker struct {
	storage storage.Storage
}

var _ grpchealth.Checker = (*StorageHealthChecker)(nil)

func NewStorageHealthChecker(s storage.Storage) *StorageHealthChecker {
	return &StorageHealthChecker{storage: s}
}

func (c *StorageHealthChecker) Check(ctx context.Context, req *grpchealth.CheckRequest) (*grpchealth.CheckResponse, error) {
	if req.Service != "" && req.Service != ProjectServiceName {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("unknown service "+req.Service))
	}
	if _, err := c.storage.Exists(ctx, healthProbePath); err != nil {
		return &grpchealth.CheckResponse{Status: grpchealth.StatusNotServing}, nil
	}
	return &grpchealth.CheckResponse{Status: grpchealth.StatusServing}, nil
}
