package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/ssmrotate/tests/fakes"
)

func addEndpoint(env *testEnv) {
	env.ec2.Endpoints["vpce-1"] = []string{"eni-b", "eni-a"}
	env.ec2.Interfaces["eni-a"] = fakes.NetworkInterface{PrivateIP: "10.0.1.5", AvailabilityZone: "us-east-1a"}
	env.ec2.Interfaces["eni-b"] = fakes.NetworkInterface{PrivateIP: "10.0.2.5", AvailabilityZone: "us-east-1b"}
}

func TestEndpointIPsCommand(t *testing.T) {
	env := newTestEnv(t)
	addEndpoint(env)

	out, err := env.run(t, "endpoint-ips", "vpce-1")
	require.NoError(t, err)
	assert.Equal(t, "10.0.1.5,10.0.2.5\n", out)
	assert.Zero(t, env.ssm.Puts())
}

func TestEndpointIPsCommand_Publish(t *testing.T) {
	env := newTestEnv(t)
	addEndpoint(env)

	_, err := env.run(t, "endpoint-ips", "vpce-1", "--publish", "/network/api-ips")
	require.NoError(t, err)

	value, ok := env.ssm.Value("/network/api-ips")
	require.True(t, ok)
	assert.Equal(t, "10.0.1.5,10.0.2.5", value)
}

func TestEndpointIPsCommand_Unknown(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "endpoint-ips", "vpce-unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vpc endpoint not found")
}
