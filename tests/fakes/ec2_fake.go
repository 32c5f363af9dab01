package fakes

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
)

// FakeEC2Client is a mock implementation of providers.EC2ClientAPI
type FakeEC2Client struct {
	// Endpoints maps VPC endpoint ids to their network interface ids
	Endpoints map[string][]string
	// Interfaces maps network interface ids to their data
	Interfaces map[string]NetworkInterface
	// Err is returned by every call when set
	Err error
}

// NetworkInterface holds the fields of an ENI the resolver reads
type NetworkInterface struct {
	PrivateIP        string
	AvailabilityZone string
}

// NewFakeEC2Client creates a new mock EC2 client
func NewFakeEC2Client() *FakeEC2Client {
	return &FakeEC2Client{
		Endpoints:  make(map[string][]string),
		Interfaces: make(map[string]NetworkInterface),
	}
}

// DescribeVpcEndpoints mocks the DescribeVpcEndpoints operation
func (f *FakeEC2Client) DescribeVpcEndpoints(ctx context.Context, params *ec2.DescribeVpcEndpointsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcEndpointsOutput, error) {
	if f.Err != nil {
		return nil, f.Err
	}

	ids := params.VpcEndpointIds
	for _, filter := range params.Filters {
		if aws.ToString(filter.Name) == "vpc-endpoint-id" {
			ids = append(ids, filter.Values...)
		}
	}

	var out []ec2types.VpcEndpoint
	for _, id := range ids {
		enis, ok := f.Endpoints[id]
		if !ok {
			continue
		}
		out = append(out, ec2types.VpcEndpoint{
			VpcEndpointId:       aws.String(id),
			VpcEndpointType:     ec2types.VpcEndpointTypeInterface,
			State:               ec2types.StateAvailable,
			NetworkInterfaceIds: append([]string(nil), enis...),
		})
	}

	return &ec2.DescribeVpcEndpointsOutput{VpcEndpoints: out}, nil
}

// DescribeNetworkInterfaces mocks the DescribeNetworkInterfaces operation
func (f *FakeEC2Client) DescribeNetworkInterfaces(ctx context.Context, params *ec2.DescribeNetworkInterfacesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNetworkInterfacesOutput, error) {
	if f.Err != nil {
		return nil, f.Err
	}

	var out []ec2types.NetworkInterface
	for _, id := range params.NetworkInterfaceIds {
		eni, ok := f.Interfaces[id]
		if !ok {
			return nil, &smithy.GenericAPIError{
				Code:    "InvalidNetworkInterfaceID.NotFound",
				Message: fmt.Sprintf("The networkInterface ID '%s' does not exist", id),
				Fault:   smithy.FaultClient,
			}
		}
		ni := ec2types.NetworkInterface{
			NetworkInterfaceId: aws.String(id),
			AvailabilityZone:   aws.String(eni.AvailabilityZone),
		}
		if eni.PrivateIP != "" {
			ni.PrivateIpAddress = aws.String(eni.PrivateIP)
		}
		out = append(out, ni)
	}

	return &ec2.DescribeNetworkInterfacesOutput{NetworkInterfaces: out}, nil
}
