package app

import (
	"context"

	"github.com/cashplan/cashplan/internal/auth"
	"github.com/cashplan/cashplan/internal/cache"
	"github.com/cashplan/cashplan/internal/config"
	"github.com/cashplan/cashplan/internal/event_bus"
	"github.com/cashplan/cashplan/internal/notify"
	"github.com/cashplan/cashplan/internal/utils"
	"github.com/cashplan/cashplan/pkg/actual"
	"github.com/cashplan/cashplan/pkg/cashaccount"
	"github.com/cashplan/cashplan/pkg/category"
	"github.com/cashplan/cashplan/pkg/collaborator"
	"github.com/cashplan/cashplan/pkg/comment"
	"github.com/cashplan/cashplan/pkg/consolidated"
	"github.com/cashplan/cashplan/pkg/entry"
	"github.com/cashplan/cashplan/pkg/forecast"
	"github.com/cashplan/cashplan/pkg/loan"
	"github.com/cashplan/cashplan/pkg/project"
	"github.com/cashplan/cashplan/pkg/provision"
	"github.com/cashplan/cashplan/pkg/scenario"
	"github.com/cashplan/cashplan/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	AuthTokenValidator auth.TokenValidator
	EventBus           *event_bus.EventBus
	Publisher          notify.Publisher
	ForecastCache      *cache.ProjectCache[forecast.Forecast]

	UserService user.Service
	UserHandler *user.Handler

	CollaboratorService *collaborator.ServiceImpl
	CollaboratorHandler *collaborator.Handler

	ProjectService *project.ServiceImpl
	ProjectHandler *project.Handler

	CategoryService *category.ServiceImpl
	CategoryHandler *category.Handler

	AccountService *cashaccount.ServiceImpl
	AccountHandler *cashaccount.Handler

	ScenarioService *scenario.ServiceImpl
	ScenarioHandler *scenario.Handler

	EntryService *entry.ServiceImpl
	EntryHandler *entry.Handler

	ActualService *actual.ServiceImpl
	ActualHandler *actual.Handler

	LoanService *loan.ServiceImpl
	LoanHandler *loan.Handler

	ProvisionHandler *provision.Handler

	CommentService *comment.ServiceImpl
	CommentHandler *comment.Handler

	ForecastService *forecast.ServiceImpl
	ForecastHandler *forecast.Handler

	ConsolidatedHandler *consolidated.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.AuthTokenValidator = auth.NewTokenValidator(cfg.Auth)
	deps.EventBus = event_bus.NewEventBus()

	publisher, err := notify.NewPublisher(cfg.Notifications)
	if err != nil {
		return nil, err
	}
	deps.Publisher = publisher
	notify.Subscribe(deps.EventBus, deps.Publisher)

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	projectRepo := project.NewRepository(db)
	deps.CollaboratorService = collaborator.NewService(collaborator.NewRepository(db), deps.UserService, projectRepo.GetName, deps.EventBus, deps.Clock)
	deps.CollaboratorHandler = collaborator.NewHandler(deps.CollaboratorService)
	guard := deps.CollaboratorService

	deps.CategoryService = category.NewService(category.NewRepository(db), guard)
	deps.CategoryHandler = category.NewHandler(deps.CategoryService)

	deps.ProjectService = project.NewService(projectRepo, guard, deps.CategoryService.SeedDefaults, deps.EventBus, deps.Clock)
	deps.ProjectHandler = project.NewHandler(deps.ProjectService)

	deps.AccountService = cashaccount.NewService(cashaccount.NewRepository(db), guard, deps.EventBus)
	deps.AccountHandler = cashaccount.NewHandler(deps.AccountService, deps.Clock)

	deps.ScenarioService = scenario.NewService(scenario.NewRepository(db), guard, deps.EventBus)
	deps.ScenarioHandler = scenario.NewHandler(deps.ScenarioService)

	loanRepo := loan.NewRepository(db)
	deps.EntryService = entry.NewService(
		entry.NewRepository(db),
		guard,
		deps.CategoryService,
		deps.AccountService,
		deps.ScenarioService.Exists,
		loan.NewExistsFunc(loanRepo),
		deps.EventBus,
	)
	deps.EntryHandler = entry.NewHandler(deps.EntryService)

	deps.ActualService = actual.NewService(actual.NewRepository(db), guard, deps.EntryService, deps.AccountService, deps.EventBus)
	deps.ActualHandler = actual.NewHandler(deps.ActualService)

	deps.LoanService = loan.NewService(loanRepo, guard, deps.EntryService, deps.ActualService)
	deps.LoanHandler = loan.NewHandler(deps.LoanService, deps.Clock)

	deps.ProvisionHandler = provision.NewHandler(provision.NewService(guard, deps.EntryService, deps.ActualService), deps.Clock)

	deps.CommentService = comment.NewService(comment.NewRepository(db), guard, comment.Targets{
		comment.TargetEntry: func(ctx context.Context, projectId int, targetId int) error {
			_, err := deps.EntryService.GetEntry(ctx, projectId, targetId)
			return err
		},
		comment.TargetActual: func(ctx context.Context, projectId int, targetId int) error {
			_, err := deps.ActualService.GetActual(ctx, projectId, targetId)
			return err
		},
	}, deps.EventBus)
	deps.CommentHandler = comment.NewHandler(deps.CommentService)

	deps.ForecastCache, err = cache.NewProjectCache[forecast.Forecast](cfg.Cache.MaxCost, cfg.Cache.Ttl)
	if err != nil {
		return nil, err
	}
	deps.ForecastService = forecast.NewService(
		guard,
		deps.EntryService,
		deps.ActualService,
		deps.AccountService,
		deps.ScenarioService.Exists,
		deps.ForecastCache,
		deps.Clock,
	)
	deps.ForecastService.Subscribe(deps.EventBus)
	deps.ForecastHandler = forecast.NewHandler(deps.ForecastService, deps.Clock)

	deps.ConsolidatedHandler = consolidated.NewHandler(
		consolidated.NewService(deps.ProjectService, deps.ForecastService),
		consolidated.NewCsvRenderer(),
		deps.Clock,
	)

	return deps, nil
}

// Close releases the resources held outside the database pool.
func (d *Dependencies) Close() {
	d.ForecastCache.Close()
	if err := d.Publisher.Close(); err != nil {
		log.Errorf("failed to close notification publisher: %v", err)
	}
}
