package deploy

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"jupiter-deploy/internal/pkg/logger"
)

// restart bounces every configured service. The services are independent:
// each restart is attempted even when an earlier one fails, and the
// failures are reported together.
func restart(remote Remote, log *logger.Logger, services []string) error {
	var result *multierror.Error
	for _, svc := range services {
		log.Info("restarting service", zap.String("service", svc))
		if err := remote.RestartService(svc); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "deploy: restart %s", svc))
			continue
		}
		log.Info("service restarted", zap.String("service", svc))
	}
	return result.ErrorOrNil()
}
