package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const SSMParameterPrefixKey = "AWS_SSM_PARAMETER_PREFIX"

// ParameterGetter is the subset of *ssm.Client used to read credentials.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// NewSSMClient builds a Parameter Store client from the default AWS credential chain.
func NewSSMClient(ctx context.Context) (*ssm.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return ssm.NewFromConfig(cfg), nil
}

// OverlaySSM fills the credential keys that are not already set in c from
// Parameter Store parameters named "<prefix>/<KEY>". Parameters that do not
// exist are skipped so LoadAdminCredentials can report them.
func OverlaySSM(ctx context.Context, c map[string]string, client ParameterGetter, prefix string) error {
	prefix = strings.TrimRight(prefix, "/")

	var missing []string
	for _, key := range CredentialKeys {
		if GetString(c, key, "") == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	// one slot per key, written by exactly one goroutine
	results := make([]string, len(missing))
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range missing {
		g.Go(func() error {
			name := prefix + "/" + key
			out, err := client.GetParameter(gctx, &ssm.GetParameterInput{
				Name:           aws.String(name),
				WithDecryption: aws.Bool(true),
			})
			if err != nil {
				var notFound *types.ParameterNotFound
				if errors.As(err, &notFound) {
					log.Warn().Str("parameter", name).Msg("ssm parameter not found")
					return nil
				}
				return fmt.Errorf("get ssm parameter %s: %w", name, err)
			}
			if out.Parameter != nil {
				results[i] = aws.ToString(out.Parameter.Value)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, key := range missing {
		if results[i] != "" {
			c[key] = results[i]
		}
	}
	return nil
}
