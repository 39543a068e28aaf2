// Package camundatest provides an in-memory job client for worker tests.
package camundatest

import (
	"context"
	"sync"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"google.golang.org/grpc"
)

// JobClient implements worker.JobClient and records every command the
// handler sends instead of talking to a broker.
type JobClient struct {
	gw *gateway
}

func NewJobClient() *JobClient {
	return &JobClient{gw: &gateway{}}
}

func (c *JobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c.gw, noRetry)
}

func (c *JobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c.gw, noRetry)
}

func (c *JobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c.gw, noRetry)
}

// FailSends makes every subsequent command return err.
func (c *JobClient) FailSends(err error) {
	c.gw.mu.Lock()
	defer c.gw.mu.Unlock()
	c.gw.sendErr = err
}

func (c *JobClient) Completed() []*pb.CompleteJobRequest {
	c.gw.mu.Lock()
	defer c.gw.mu.Unlock()
	return append([]*pb.CompleteJobRequest(nil), c.gw.completed...)
}

func (c *JobClient) Failed() []*pb.FailJobRequest {
	c.gw.mu.Lock()
	defer c.gw.mu.Unlock()
	return append([]*pb.FailJobRequest(nil), c.gw.failed...)
}

func (c *JobClient) Thrown() []*pb.ThrowErrorRequest {
	c.gw.mu.Lock()
	defer c.gw.mu.Unlock()
	return append([]*pb.ThrowErrorRequest(nil), c.gw.thrown...)
}

func noRetry(context.Context, error) bool { return false }

// gateway answers the three job RPCs. Any other RPC panics on the nil
// embedded client.
type gateway struct {
	pb.GatewayClient

	mu        sync.Mutex
	sendErr   error
	completed []*pb.CompleteJobRequest
	failed    []*pb.FailJobRequest
	thrown    []*pb.ThrowErrorRequest
}

func (g *gateway) CompleteJob(_ context.Context, in *pb.CompleteJobRequest, _ ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return nil, g.sendErr
	}
	g.completed = append(g.completed, in)
	return &pb.CompleteJobResponse{}, nil
}

func (g *gateway) FailJob(_ context.Context, in *pb.FailJobRequest, _ ...grpc.CallOption) (*pb.FailJobResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return nil, g.sendErr
	}
	g.failed = append(g.failed, in)
	return &pb.FailJobResponse{}, nil
}

func (g *gateway) ThrowError(_ context.Context, in *pb.ThrowErrorRequest, _ ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return nil, g.sendErr
	}
	g.thrown = append(g.thrown, in)
	return &pb.ThrowErrorResponse{}, nil
}
