package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// User
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.UpdateUser).Methods("PUT")

	// Projects
	r.HandleFunc("/api/project", deps.ProjectHandler.List).Methods("GET")
	r.HandleFunc("/api/project", deps.ProjectHandler.Create).Methods("POST")
	r.HandleFunc("/api/project/{projectId}", deps.ProjectHandler.Get).Methods("GET")
	r.HandleFunc("/api/project/{projectId}", deps.ProjectHandler.Update).Methods("PUT")
	r.HandleFunc("/api/project/{projectId}", deps.ProjectHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/project/{projectId}/archive", deps.ProjectHandler.Archive).Methods("PUT")

	// Collaborators and invitations
	r.HandleFunc("/api/project/{projectId}/collaborator", deps.CollaboratorHandler.List).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/collaborator/{userId}", deps.CollaboratorHandler.ChangeRole).Methods("PUT")
	r.HandleFunc("/api/project/{projectId}/collaborator/{userId}", deps.CollaboratorHandler.Remove).Methods("DELETE")
	r.HandleFunc("/api/project/{projectId}/invitation", deps.CollaboratorHandler.ListInvitations).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/invitation", deps.CollaboratorHandler.Invite).Methods("POST")
	r.HandleFunc("/api/project/{projectId}/invitation/{invitationId}", deps.CollaboratorHandler.RevokeInvitation).Methods("DELETE")
	r.HandleFunc("/api/invitation/accept", deps.CollaboratorHandler.AcceptInvitation).Methods("POST")

	// Categories
	r.HandleFunc("/api/project/{projectId}/category", deps.CategoryHandler.GetTree).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/category", deps.CategoryHandler.Create).Methods("POST")
	r.HandleFunc("/api/project/{projectId}/category/{categoryId}", deps.CategoryHandler.Rename).Methods("PUT")
	r.HandleFunc("/api/project/{projectId}/category/{categoryId}", deps.CategoryHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/project/{projectId}/category/{categoryId}/position", deps.CategoryHandler.Move).Methods("PUT")

	// Cash accounts
	r.HandleFunc("/api/project/{projectId}/account", deps.AccountHandler.List).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/account", deps.AccountHandler.Create).Methods("POST")
	r.HandleFunc("/api/project/{projectId}/account/{accountId}", deps.AccountHandler.Get).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/account/{accountId}", deps.AccountHandler.Update).Methods("PUT")
	r.HandleFunc("/api/project/{projectId}/account/{accountId}", deps.AccountHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/project/{projectId}/account/{accountId}/balance", deps.AccountHandler.Balance).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/balance", deps.AccountHandler.Balances).Methods("GET")

	// Scenarios
	r.HandleFunc("/api/project/{projectId}/scenario", deps.ScenarioHandler.List).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/scenario", deps.ScenarioHandler.Create).Methods("POST")
	r.HandleFunc("/api/project/{projectId}/scenario/{scenarioId}", deps.ScenarioHandler.Get).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/scenario/{scenarioId}", deps.ScenarioHandler.Update).Methods("PUT")
	r.HandleFunc("/api/project/{projectId}/scenario/{scenarioId}", deps.ScenarioHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/project/{projectId}/scenario/{scenarioId}/duplicate", deps.ScenarioHandler.Duplicate).Methods("POST")

	// Budget entries
	r.HandleFunc("/api/project/{projectId}/entry", deps.EntryHandler.List).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/entry", deps.EntryHandler.Create).Methods("POST")
	r.HandleFunc("/api/project/{projectId}/entry/{entryId}", deps.EntryHandler.Get).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/entry/{entryId}", deps.EntryHandler.Update).Methods("PUT")
	r.HandleFunc("/api/project/{projectId}/entry/{entryId}", deps.EntryHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/project/{projectId}/entry/{entryId}/occurrences", deps.EntryHandler.Occurrences).Methods("GET")

	// Actuals and payments
	r.HandleFunc("/api/project/{projectId}/actual", deps.ActualHandler.List).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/actual", deps.ActualHandler.Create).Methods("POST")
	r.HandleFunc("/api/project/{projectId}/actual/{actualId}", deps.ActualHandler.Get).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/actual/{actualId}", deps.ActualHandler.Update).Methods("PUT")
	r.HandleFunc("/api/project/{projectId}/actual/{actualId}", deps.ActualHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/project/{projectId}/actual/{actualId}/payment", deps.ActualHandler.AddPayment).Methods("POST")
	r.HandleFunc("/api/project/{projectId}/actual/{actualId}/payment/{paymentId}", deps.ActualHandler.UpdatePayment).Methods("PUT")
	r.HandleFunc("/api/project/{projectId}/actual/{actualId}/payment/{paymentId}", deps.ActualHandler.DeletePayment).Methods("DELETE")

	// Loans
	r.HandleFunc("/api/project/{projectId}/loan", deps.LoanHandler.List).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/loan", deps.LoanHandler.Create).Methods("POST")
	r.HandleFunc("/api/project/{projectId}/loan/{loanId}", deps.LoanHandler.Get).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/loan/{loanId}", deps.LoanHandler.Update).Methods("PUT")
	r.HandleFunc("/api/project/{projectId}/loan/{loanId}", deps.LoanHandler.Delete).Methods("DELETE")

	// Provision funds
	r.HandleFunc("/api/project/{projectId}/provision", deps.ProvisionHandler.Get).Methods("GET")

	// Comments
	r.HandleFunc("/api/project/{projectId}/comment", deps.CommentHandler.List).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/comment", deps.CommentHandler.Create).Methods("POST")
	r.HandleFunc("/api/project/{projectId}/comment/{commentId}", deps.CommentHandler.Update).Methods("PUT")
	r.HandleFunc("/api/project/{projectId}/comment/{commentId}", deps.CommentHandler.Delete).Methods("DELETE")

	// Forecasts
	r.HandleFunc("/api/project/{projectId}/forecast", deps.ForecastHandler.Get).Methods("GET")
	r.HandleFunc("/api/consolidated", deps.ConsolidatedHandler.Get).Methods("GET")
}
