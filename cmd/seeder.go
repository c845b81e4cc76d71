package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample accounts for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if clearData {
			for _, table := range []string{"audit_logs", "applications", "internship_offers", "users"} {
				if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		seeds := []struct {
			Email       string
			Name        string
			Role        string
			Department  string
			CompanyName string
			CompanyWeb  string
			TrustScore  int
			Status      string
		}{
			{Email: "student@campus.example", Name: "Sam Student", Role: "Student", Status: "active"},
			{Email: "recruiter@techcorp.example", Name: "Rita Recruiter", Role: "Recruiter",
				CompanyName: "TechCorp", CompanyWeb: "https://techcorp.example", TrustScore: 50, Status: "active"},
			{Email: "faculty@campus.example", Name: "Frank Faculty", Role: "Faculty",
				Department: "Computer Science", Status: "active"},
			{Email: "admin@campus.example", Name: "Ada Admin", Role: "Admin", Status: "active"},
			{Email: "master@campus.example", Name: "Mei Master", Role: "Master Admin", Status: "active"},
		}

		for _, s := range seeds {
			var exists int
			if err := db.QueryRow("SELECT 1 FROM users WHERE email = $1", s.Email).Scan(&exists); err == nil {
				fmt.Println("user already exists, skipping:", s.Email)
				continue
			}

			_, err := db.Exec(`INSERT INTO users
				(email, name, password_hash, role, is_verified, account_status, department,
				 company_name, company_website, trust_score, created_at, updated_at)
				VALUES ($1, $2, $3, $4, true, $5, $6, $7, $8, $9, now(), now())`,
				s.Email, s.Name, string(hash), s.Role, s.Status, s.Department,
				s.CompanyName, s.CompanyWeb, s.TrustScore)
			if err != nil {
				log.Fatalf("failed to insert user %s: %v", s.Email, err)
			}
			fmt.Println("Seeded user:", s.Email, "("+s.Role+")")
		}

		fmt.Println("Seeding complete. Default password for all accounts:", password)
	},
}
