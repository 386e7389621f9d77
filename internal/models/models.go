// Package models holds the JSON shapes exchanged between the MOTK server and
// its clients.
package models

type Account struct {
	ID             int64  `json:"id"`
	AccountName    string `json:"account_name"`
	DisplayName    string `json:"display_name"`
	AccountType    string `json:"account_type"`
	OrganizationID int64  `json:"organization_id"`
}

type AccountCreate struct {
	AccountName    string `json:"account_name"`
	DisplayName    string `json:"display_name"`
	AccountType    string `json:"account_type"`
	Password       string `json:"password"`
	OrganizationID int64  `json:"organization_id"`
}

type Organization struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type OrganizationCreate struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type Project struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Status         string  `json:"status"`
	OrganizationID int64   `json:"organization_id"`
	StartDate      *string `json:"start_date"`
	EndDate        *string `json:"end_date"`
}

type ProjectCreate struct {
	Name           string  `json:"name"`
	OrganizationID int64   `json:"organization_id"`
	Status         string  `json:"status"`
	StartDate      *string `json:"start_date"`
	EndDate        *string `json:"end_date"`
}

// ProjectDetails is a project with its members, shots and assets nested.
type ProjectDetails struct {
	Project
	Members []ProjectMember `json:"members"`
	Shots   []Shot          `json:"shots"`
	Assets  []Asset         `json:"assets"`
}

type ProjectMember struct {
	ID          int64    `json:"id"`
	ProjectID   int64    `json:"project_id"`
	AccountID   *int64   `json:"account_id"`
	DisplayName string   `json:"display_name"`
	Department  string   `json:"department"`
	Role        string   `json:"role"`
	Account     *Account `json:"account,omitempty"`
}

type ProjectMemberCreate struct {
	DisplayName string `json:"display_name"`
	Department  string `json:"department"`
	Role        string `json:"role"`
	AccountID   *int64 `json:"account_id"`
}

type Shot struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	ProjectID int64  `json:"project_id"`
}

type ShotCreate struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	ProjectID int64  `json:"project_id"`
}

// ShotUpdate changes only the fields that are set.
type ShotUpdate struct {
	Name   *string `json:"name,omitempty"`
	Status *string `json:"status,omitempty"`
}

type Asset struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	AssetType string `json:"asset_type"`
	Status    string `json:"status"`
	ProjectID int64  `json:"project_id"`
}

type AssetCreate struct {
	Name      string `json:"name"`
	AssetType string `json:"asset_type"`
	Status    string `json:"status"`
	ProjectID int64  `json:"project_id"`
}

type Task struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Status       string         `json:"status"`
	StartDate    *string        `json:"start_date"`
	EndDate      *string        `json:"end_date"`
	AssignedToID int64          `json:"assigned_to_id"`
	ShotID       *int64         `json:"shot_id"`
	AssetID      *int64         `json:"asset_id"`
	Dependencies []int64        `json:"dependencies"`
	AssignedTo   *ProjectMember `json:"assigned_to,omitempty"`
}

// TaskCreate links a task to exactly one of ShotID and AssetID; the other is
// sent as JSON null.
type TaskCreate struct {
	Name         string  `json:"name"`
	Status       string  `json:"status"`
	AssignedToID int64   `json:"assigned_to_id"`
	ShotID       *int64  `json:"shot_id"`
	AssetID      *int64  `json:"asset_id"`
	Dependencies []int64 `json:"dependencies"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ErrorBody is the body of every non-2xx response.
type ErrorBody struct {
	Detail string `json:"detail"`
}

var (
	OrganizationStatuses = []string{"active", "inactive", "archived"}
	ProjectStatuses      = []string{"active", "on_hold", "completed", "archived"}
	ShotStatuses         = []string{"pending", "in_progress", "complete", "on_hold"}
	TaskStatuses         = []string{"todo", "in_progress", "review", "done", "blocked"}
	AccountTypes         = []string{"admin", "manager", "artist", "client"}
)
