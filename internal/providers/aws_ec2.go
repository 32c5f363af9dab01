package providers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
)

// EC2ClientAPI defines the EC2 operations needed to resolve VPC endpoint
// network interfaces. This allows for mocking in tests
type EC2ClientAPI interface {
	DescribeVpcEndpoints(ctx context.Context, params *ec2.DescribeVpcEndpointsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcEndpointsOutput, error)
	DescribeNetworkInterfaces(ctx context.Context, params *ec2.DescribeNetworkInterfacesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNetworkInterfacesOutput, error)
}

// NewEC2Client creates an EC2 client from session settings
func NewEC2Client(ctx context.Context, c AWSConfig) (*ec2.Client, error) {
	cfg, err := LoadAWSConfig(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to create EC2 client: %w", err)
	}
	return ec2.NewFromConfig(cfg), nil
}
