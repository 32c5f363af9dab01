// Package vpcendpoint looks up the private IP addresses behind an interface
// VPC endpoint, one per availability zone, so they can be registered as
// load balancer targets or published for other stacks.
package vpcendpoint

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/systmms/ssmrotate/internal/logging"
)

var (
	ErrEndpointNotFound = errors.New("vpc endpoint not found")
	ErrNoInterfaces     = errors.New("vpc endpoint has no network interfaces")
	ErrNoPrivateIP      = errors.New("network interface has no private IP address")
)

// API is the subset of the EC2 client the resolver needs
type API interface {
	DescribeVpcEndpoints(ctx context.Context, params *ec2.DescribeVpcEndpointsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcEndpointsOutput, error)
	DescribeNetworkInterfaces(ctx context.Context, params *ec2.DescribeNetworkInterfacesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNetworkInterfacesOutput, error)
}

// Interface is one endpoint network interface
type Interface struct {
	ID               string
	AvailabilityZone string
	PrivateIP        string
}

// Resolver resolves endpoint ids to private addresses
type Resolver struct {
	client API
	logger *logging.Logger
}

// NewResolver creates a resolver. logger may be nil.
func NewResolver(client API, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Resolver{client: client, logger: logger}
}

// Interfaces returns the endpoint's network interfaces ordered by
// availability zone, then interface id.
func (r *Resolver) Interfaces(ctx context.Context, endpointID string) ([]Interface, error) {
	if endpointID == "" {
		return nil, errors.New("endpoint id is required")
	}

	endpoints, err := r.client.DescribeVpcEndpoints(ctx, &ec2.DescribeVpcEndpointsInput{
		VpcEndpointIds: []string{endpointID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe vpc endpoint %s: %w", endpointID, err)
	}
	if len(endpoints.VpcEndpoints) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEndpointNotFound, endpointID)
	}

	eniIDs := endpoints.VpcEndpoints[0].NetworkInterfaceIds
	if len(eniIDs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoInterfaces, endpointID)
	}
	r.logger.Debug("Endpoint %s has interfaces %v", endpointID, eniIDs)

	out, err := r.client.DescribeNetworkInterfaces(ctx, &ec2.DescribeNetworkInterfacesInput{
		NetworkInterfaceIds: eniIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe network interfaces of %s: %w", endpointID, err)
	}

	interfaces := make([]Interface, 0, len(out.NetworkInterfaces))
	for _, ni := range out.NetworkInterfaces {
		iface := Interface{
			ID:               aws.ToString(ni.NetworkInterfaceId),
			AvailabilityZone: aws.ToString(ni.AvailabilityZone),
			PrivateIP:        aws.ToString(ni.PrivateIpAddress),
		}
		if iface.PrivateIP == "" {
			return nil, fmt.Errorf("%w: %s", ErrNoPrivateIP, iface.ID)
		}
		interfaces = append(interfaces, iface)
	}

	sort.Slice(interfaces, func(i, j int) bool {
		if interfaces[i].AvailabilityZone != interfaces[j].AvailabilityZone {
			return interfaces[i].AvailabilityZone < interfaces[j].AvailabilityZone
		}
		return interfaces[i].ID < interfaces[j].ID
	})
	return interfaces, nil
}

// PrivateIPs returns the endpoint's private IPs ordered by availability zone
func (r *Resolver) PrivateIPs(ctx context.Context, endpointID string) ([]string, error) {
	interfaces, err := r.Interfaces(ctx, endpointID)
	if err != nil {
		return nil, err
	}

	ips := make([]string, len(interfaces))
	for i, iface := range interfaces {
		ips[i] = iface.PrivateIP
	}
	return ips, nil
}
