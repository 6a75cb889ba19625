package main

import (
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"time"

	"os"

	"timetracker-backend/internal/config"
	"timetracker-backend/internal/database"
	"timetracker-backend/internal/database/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Simple structures that directly match DB schema
type OrganizationData struct {
	Slug        string `yaml:"slug"`
	DisplayName string `yaml:"display_name"`
	Plan        string `yaml:"plan"`
}

type UserData struct {
	Email    string `yaml:"email"`
	FullName string `yaml:"full_name"`
}

type MembershipData struct {
	OrganizationSlug string `yaml:"organization_slug"`
	UserEmail        string `yaml:"user_email"`
	Role             string `yaml:"role"`
	Status           string `yaml:"status"`
}

type ProjectData struct {
	OrganizationSlug string `yaml:"organization_slug"`
	Name             string `yaml:"name"`
	Description      string `yaml:"description"`
}

// File structures
type OrganizationsFile struct {
	Organizations []OrganizationData `yaml:"organizations"`
}

type UsersFile struct {
	Users []UserData `yaml:"users"`
}

type MembershipsFile struct {
	Memberships []MembershipData `yaml:"memberships"`
}

type ProjectsFile struct {
	Projects []ProjectData `yaml:"projects"`
}

func main() {
	log.Println("🚀 Loading initial data from YAML files...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database with retry (for dockerized Postgres startup)
	db, err := connectWithRetry(cfg.DatabaseURL, 60, time.Second)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Load data from YAML files
	if err := loadDataFromYAMLFiles(db, "scripts/data"); err != nil {
		log.Fatalf("Failed to load data from YAML files: %v", err)
	}

	log.Println("✅ Initial data loaded successfully!")
}

// connectWithRetry attempts to initialize the DB with retries to wait for Postgres readiness.
func connectWithRetry(dsn string, maxAttempts int, delay time.Duration) (*gorm.DB, error) {
	// Suppress verbose GORM logging during data loading
	opts := &database.Options{
		LogLevel: logger.Silent,
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		db, err := database.Initialize(dsn, opts)
		if err == nil {
			return db, nil
		}
		// Only log every 10 attempts to reduce noise
		if attempt%10 == 0 || attempt == maxAttempts {
			log.Printf("Database not ready (%d/%d): %v", attempt, maxAttempts, err)
		}
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("database not ready after %d attempts", maxAttempts)
}

func loadDataFromYAMLFiles(db *gorm.DB, dataDir string) error {
	organizations, err := loadOrganizations(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load organizations: %w", err)
	}

	users, err := loadUsers(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	memberships, err := loadMemberships(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load memberships: %w", err)
	}

	projects, err := loadProjects(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load projects: %w", err)
	}

	// Create organizations first
	orgMap := make(map[string]*models.Organization)
	orgCreated := 0
	for _, orgData := range organizations {
		org, created, err := createOrganization(db, orgData)
		if err != nil {
			return err
		}
		orgMap[orgData.Slug] = org
		if created {
			orgCreated++
		}
	}
	log.Printf("Organizations: %d loaded, %d created", len(organizations), orgCreated)

	// Then users
	userMap := make(map[string]*models.User)
	userCreated := 0
	for _, userData := range users {
		user, created, err := createUser(db, userData)
		if err != nil {
			return err
		}
		userMap[userData.Email] = user
		if created {
			userCreated++
		}
	}
	log.Printf("Users: %d loaded, %d created", len(users), userCreated)

	// Memberships bind the two
	membershipCreated := 0
	for _, membershipData := range memberships {
		_, created, err := createMembership(db, membershipData, orgMap, userMap)
		if err != nil {
			return err
		}
		if created {
			membershipCreated++
		}
	}
	log.Printf("Memberships: %d loaded, %d created", len(memberships), membershipCreated)

	// Finally tenant business data
	projectCreated := 0
	for _, projectData := range projects {
		_, created, err := createProject(db, projectData, orgMap)
		if err != nil {
			return err
		}
		if created {
			projectCreated++
		}
	}
	log.Printf("Projects: %d loaded, %d created", len(projects), projectCreated)

	return nil
}

func loadOrganizations(dataDir string) ([]OrganizationData, error) {
	var allOrgs []OrganizationData

	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(path, ".yaml") && strings.Contains(path, "organizations") {
			var file OrganizationsFile
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			if err := yaml.Unmarshal(data, &file); err != nil {
				return err
			}

			allOrgs = append(allOrgs, file.Organizations...)
		}
		return nil
	})

	return allOrgs, err
}

func loadUsers(dataDir string) ([]UserData, error) {
	var allUsers []UserData

	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(path, ".yaml") && strings.Contains(path, "users") {
			var file UsersFile
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			if err := yaml.Unmarshal(data, &file); err != nil {
				return err
			}

			allUsers = append(allUsers, file.Users...)
		}
		return nil
	})

	return allUsers, err
}

func loadMemberships(dataDir string) ([]MembershipData, error) {
	var allMemberships []MembershipData

	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(path, ".yaml") && strings.Contains(path, "memberships") {
			var file MembershipsFile
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			if err := yaml.Unmarshal(data, &file); err != nil {
				return err
			}

			allMemberships = append(allMemberships, file.Memberships...)
		}
		return nil
	})

	return allMemberships, err
}

func loadProjects(dataDir string) ([]ProjectData, error) {
	var allProjects []ProjectData

	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(path, ".yaml") && strings.Contains(path, "projects") {
			var file ProjectsFile
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			if err := yaml.Unmarshal(data, &file); err != nil {
				return err
			}

			allProjects = append(allProjects, file.Projects...)
		}
		return nil
	})

	return allProjects, err
}

func createOrganization(db *gorm.DB, orgData OrganizationData) (*models.Organization, bool, error) {
	var org models.Organization
	if err := db.Where("slug = ?", orgData.Slug).First(&org).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			plan := orgData.Plan
			if plan == "" {
				plan = "free"
			}

			org = models.Organization{
				Slug:        orgData.Slug,
				DisplayName: orgData.DisplayName,
				Plan:        plan,
				IsActive:    true,
			}

			if err := db.Create(&org).Error; err != nil {
				return nil, false, fmt.Errorf("failed to create organization: %w", err)
			}
			return &org, true, nil // created = true
		} else {
			return nil, false, fmt.Errorf("failed to query organization: %w", err)
		}
	}

	return &org, false, nil // created = false (existing)
}

func createUser(db *gorm.DB, userData UserData) (*models.User, bool, error) {
	var user models.User
	if err := db.Where("email = ?", userData.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			user = models.User{
				Email:    userData.Email,
				FullName: userData.FullName,
			}

			if err := db.Create(&user).Error; err != nil {
				return nil, false, fmt.Errorf("failed to create user: %w", err)
			}
			return &user, true, nil // created = true
		} else {
			return nil, false, fmt.Errorf("failed to query user: %w", err)
		}
	}

	return &user, false, nil // created = false (existing)
}

func createMembership(db *gorm.DB, membershipData MembershipData, orgMap map[string]*models.Organization, userMap map[string]*models.User) (*models.Membership, bool, error) {
	org := orgMap[membershipData.OrganizationSlug]
	if org == nil {
		return nil, false, fmt.Errorf("organization %s not found for membership of %s", membershipData.OrganizationSlug, membershipData.UserEmail)
	}
	user := userMap[membershipData.UserEmail]
	if user == nil {
		return nil, false, fmt.Errorf("user %s not found for membership in %s", membershipData.UserEmail, membershipData.OrganizationSlug)
	}

	var membership models.Membership
	if err := db.Where("organization_id = ? AND user_id = ?", org.ID, user.ID).First(&membership).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			role := models.MembershipRole(membershipData.Role)
			if membershipData.Role == "" {
				role = models.MembershipRoleMember
			}
			status := models.MembershipStatus(membershipData.Status)
			if membershipData.Status == "" {
				status = models.MembershipStatusActive
			}

			membership = models.Membership{
				OrganizationID: org.ID,
				UserID:         user.ID,
				Role:           role,
				Status:         status,
			}

			if err := db.Create(&membership).Error; err != nil {
				return nil, false, fmt.Errorf("failed to create membership: %w", err)
			}
			return &membership, true, nil // created = true
		} else {
			return nil, false, fmt.Errorf("failed to query membership: %w", err)
		}
	}

	return &membership, false, nil // created = false (existing)
}

func createProject(db *gorm.DB, projectData ProjectData, orgMap map[string]*models.Organization) (*models.Project, bool, error) {
	org := orgMap[projectData.OrganizationSlug]
	if org == nil {
		return nil, false, fmt.Errorf("organization %s not found for project %s", projectData.OrganizationSlug, projectData.Name)
	}

	var project models.Project
	if err := db.Where("name = ? AND organization_id = ?", projectData.Name, org.ID).First(&project).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			project = models.Project{
				OrganizationID: org.ID,
				Name:           projectData.Name,
				Description:    projectData.Description,
			}

			if err := db.Create(&project).Error; err != nil {
				return nil, false, fmt.Errorf("failed to create project: %w", err)
			}
			return &project, true, nil // created = true
		} else {
			return nil, false, fmt.Errorf("failed to query project: %w", err)
		}
	}

	return &project, false, nil // created = false (existing)
}
