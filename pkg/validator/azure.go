package validator

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/praetorian-inc/policyscan/pkg/types"
)

// AzureStorageValidator validates Azure Storage connection strings by
// listing containers.
type AzureStorageValidator struct{}

func NewAzureStorageValidator() *AzureStorageValidator {
	return &AzureStorageValidator{}
}

func (v *AzureStorageValidator) Name() string {
	return "azure-storage"
}

func (v *AzureStorageValidator) CanValidate(secret string) bool {
	fields := parseConnectionString(secret)
	return fields["accountname"] != "" && fields["accountkey"] != ""
}

func (v *AzureStorageValidator) Validate(ctx context.Context, secret string, _ *types.LineContext) (*types.ValidationResult, error) {
	fields := parseConnectionString(secret)
	accountName, accountKey := fields["accountname"], fields["accountkey"]
	if accountName == "" || accountKey == "" {
		return types.NewValidationResult(types.StatusUndetermined, 0, "missing AccountName or AccountKey"), nil
	}

	if len(accountKey)%4 != 0 {
		accountKey += strings.Repeat("=", 4-len(accountKey)%4)
	}
	suffix := fields["endpointsuffix"]
	if suffix == "" {
		suffix = "core.windows.net"
	}
	connStr := fmt.Sprintf("DefaultEndpointsProtocol=https;AccountName=%s;AccountKey=%s;EndpointSuffix=%s",
		accountName, accountKey, suffix)

	client, err := azblob.NewClientFromConnectionString(connStr, nil)
	if err != nil {
		return types.NewValidationResult(types.StatusInvalid, 1.0,
			fmt.Sprintf("failed to create client: %v", err)), nil
	}

	pager := client.NewListContainersPager(nil)
	if _, err := pager.NextPage(ctx); err != nil {
		if isAzureAuthError(err) {
			return types.NewValidationResult(types.StatusInvalid, 1.0, "invalid credentials"), nil
		}
		return types.NewValidationResult(types.StatusUndetermined, 0.5,
			fmt.Sprintf("validation error: %v", err)), nil
	}

	return types.NewValidationResult(types.StatusValid, 1.0,
		fmt.Sprintf("valid Azure Storage credentials for account %s", accountName)), nil
}

// parseConnectionString splits "Key=Value;..." into lower-cased keys.
// Values keep any '=' padding.
func parseConnectionString(s string) map[string]string {
	fields := make(map[string]string)
	for _, part := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		fields[strings.ToLower(k)] = v
	}
	return fields
}

func isAzureAuthError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "AuthenticationFailed") ||
		strings.Contains(errStr, "AuthorizationFailure") ||
		strings.Contains(errStr, "InvalidAuthenticationInfo")
}
