package commands

import (
	"github.com/systmms/ssmrotate/pkg/paramstore"
)

// rotateSuggestion turns a store error kind into advice
func rotateSuggestion(err error) string {
	switch paramstore.KindOf(err) {
	case "missing_target":
		return "Create the parameter first, e.g. 'ssmrotate param put <name> <value>'. Rotation never creates parameters"
	case "permission_denied":
		return "Grant ssm:GetParameter and ssm:PutParameter on the parameter to the current identity ('ssmrotate doctor' shows it)"
	case "transient":
		return "The service is throttling or unavailable. Run the command again later"
	case "invalid":
		return "Check the parameter name and value limits"
	default:
		return "Run with --debug for more detail"
	}
}
