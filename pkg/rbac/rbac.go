package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/casbin/casbin/v2"
	cmodel "github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/fsnotify/fsnotify"

	"github.com/codespace-operator/keycloak-demo/pkg/common"
)

// RBAC resolves role inheritance from a Casbin model and policy. Only the
// grouping ("g") section is consulted: "g, ADMIN, USER" makes ADMIN imply USER.
type RBAC struct {
	mu         sync.RWMutex
	enf        *casbin.Enforcer
	modelPath  string
	policyPath string
	logger     *slog.Logger
}

var _ RoleHierarchy = (*RBAC)(nil)

// RBACConfig holds configuration for RBAC initialization
type RBACConfig struct {
	ModelPath  string
	PolicyPath string
	Logger     *slog.Logger
	// Watch enables hot reload on file changes until ctx is done.
	Watch bool
}

// NewRBAC loads the model and policy and optionally starts a file watcher.
func NewRBAC(ctx context.Context, config RBACConfig) (*RBAC, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.ModelPath == "" || config.PolicyPath == "" {
		return nil, errors.New("rbac model and policy paths are required")
	}

	r := &RBAC{
		modelPath:  config.ModelPath,
		policyPath: config.PolicyPath,
		logger:     config.Logger.With("component", "rbac"),
	}

	if err := r.reload(); err != nil {
		return nil, fmt.Errorf("initial RBAC load failed: %w", err)
	}

	if config.Watch {
		if err := r.startWatcher(ctx); err != nil {
			r.logger.Warn("Failed to start RBAC file watcher", "error", err)
		}
	}

	return r, nil
}

// startWatcher starts file system watching for hot reload
func (r *RBAC) startWatcher(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// parent directories too, for ConfigMap-style symlink swaps
	watchPaths := common.UniqueNonEmpty([]string{
		r.modelPath,
		r.policyPath,
		filepath.Dir(r.modelPath),
		filepath.Dir(r.policyPath),
	})

	for _, path := range watchPaths {
		if err := watcher.Add(path); err != nil {
			r.logger.Warn("Failed to watch path", "path", path, "error", err)
		}
	}

	go func() {
		defer watcher.Close()

		var lastReload time.Time
		const debounce = 250 * time.Millisecond

		for {
			select {
			case <-ctx.Done():
				r.logger.Debug("RBAC file watcher stopped")
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				now := time.Now()
				if now.Sub(lastReload) < debounce {
					continue
				}
				lastReload = now

				if err := r.Reload(); err != nil {
					r.logger.Error("RBAC reload failed after file system event", "error", err, "event", event.Name)
				} else {
					r.logger.Info("RBAC policies reloaded after file system event", "event", event.Name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				r.logger.Warn("RBAC file watcher error", "error", err)
			}
		}
	}()

	return nil
}

// reload rebuilds the Enforcer from the current files
func (r *RBAC) reload() error {
	model, err := cmodel.NewModelFromFile(r.modelPath)
	if err != nil {
		return fmt.Errorf("failed to load model from %s: %w", r.modelPath, err)
	}

	enforcer, err := casbin.NewEnforcer(model, fileadapter.NewAdapter(r.policyPath))
	if err != nil {
		return fmt.Errorf("failed to create enforcer: %w", err)
	}

	r.mu.Lock()
	r.enf = enforcer
	r.mu.Unlock()

	r.logger.Info("RBAC policies reloaded successfully")
	return nil
}

// Reload forces a reload of RBAC policies. On failure the previous policy stays active.
func (r *RBAC) Reload() error {
	if _, err := os.Stat(r.modelPath); err != nil {
		return err
	}
	if _, err := os.Stat(r.policyPath); err != nil {
		return err
	}
	return r.reload()
}

func (r *RBAC) enforcer() (*casbin.Enforcer, error) {
	r.mu.RLock()
	enf := r.enf
	r.mu.RUnlock()
	if enf == nil {
		return nil, errors.New("rbac not initialized")
	}
	return enf, nil
}

// GetRolesForUser returns all roles (including inherited) for a role or subject
func (r *RBAC) GetRolesForUser(subject string) ([]string, error) {
	enf, err := r.enforcer()
	if err != nil {
		return nil, err
	}
	return enf.GetImplicitRolesForUser(subject)
}

// Expand returns roles plus every role they imply, de-duplicated and sorted.
func (r *RBAC) Expand(roles []string) ([]string, error) {
	enf, err := r.enforcer()
	if err != nil {
		return nil, err
	}

	out := slices.Clone(roles)
	for _, role := range common.UniqueNonEmpty(roles) {
		implied, err := enf.GetImplicitRolesForUser(role)
		if err != nil {
			return nil, fmt.Errorf("expand role %s: %w", role, err)
		}
		out = append(out, implied...)
	}
	out = common.UniqueNonEmpty(out)
	slices.Sort(out)
	return out, nil
}
