package vpcendpoint

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/cfn"
)

// PropertyEndpointID is the custom resource property naming the endpoint
const PropertyEndpointID = "VpcEndpointId"

// CustomResource answers CloudFormation custom resource requests with the
// endpoint's private IPs. Data carries IpAddresses (comma separated) and
// Ip0..IpN, one per availability zone.
func (r *Resolver) CustomResource(ctx context.Context, event cfn.Event) (physicalResourceID string, data map[string]interface{}, err error) {
	endpointID, _ := event.ResourceProperties[PropertyEndpointID].(string)
	physicalResourceID = event.PhysicalResourceID
	if physicalResourceID == "" {
		physicalResourceID = endpointID + "-ips"
	}

	// Nothing was created, so deletion has nothing to undo.
	if event.RequestType == cfn.RequestDelete {
		return physicalResourceID, nil, nil
	}

	if endpointID == "" {
		return physicalResourceID, nil, fmt.Errorf("missing resource property %s", PropertyEndpointID)
	}

	ips, err := r.PrivateIPs(ctx, endpointID)
	if err != nil {
		return physicalResourceID, nil, err
	}

	data = map[string]interface{}{
		"IpAddresses": strings.Join(ips, ","),
	}
	for i, ip := range ips {
		data[fmt.Sprintf("Ip%d", i)] = ip
	}

	r.logger.Info("Resolved %s to %s", endpointID, strings.Join(ips, ","))
	return physicalResourceID, data, nil
}
