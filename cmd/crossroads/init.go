package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crossroads-cli/crossroads/pkg/models"
)

var (
	initForce   bool
	initNoGit   bool
	initWithPRD bool
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Scaffold a PRD template and config in a project",
	Long: `Initialize a directory for use with crossroads.

This command:
  - Verifies prerequisites (git)
  - Initializes a git repository if needed
  - Writes a .crossroads.yaml project config
  - Optionally writes an example prd.json template

The directory argument is optional and defaults to the current directory.

Examples:
  crossroads init                  # initialize the current directory
  crossroads init ./myproject      # initialize a specific directory
  crossroads init --with-prd       # also write an example prd.json
  crossroads init --force          # overwrite existing config files`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config and template files")
	initCmd.Flags().BoolVar(&initNoGit, "no-git", false, "skip git initialization")
	initCmd.Flags().BoolVar(&initWithPRD, "with-prd", false, "write an example prd.json template")
}

func runInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	absPath, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", absPath, err)
	}

	fmt.Printf("Initializing crossroads in %s...\n\n", absPath)

	if err := checkGitCLI(); err != nil {
		printStatus("x", "git not found", color.FgRed)
		return err
	}
	printStatus("+", "git found", color.FgGreen)

	if !initNoGit {
		if err := initGitRepo(absPath); err != nil {
			return err
		}
	} else {
		fmt.Println("Skipping git initialization (--no-git flag)")
	}

	configPath := filepath.Join(absPath, ".crossroads.yaml")
	if _, err := os.Stat(configPath); err == nil && !initForce {
		printStatus("=", ".crossroads.yaml already exists (use --force to overwrite)", color.FgYellow)
	} else {
		if err := os.WriteFile(configPath, []byte(projectConfigTemplate), 0o644); err != nil {
			return fmt.Errorf("writing .crossroads.yaml: %w", err)
		}
		printStatus("+", "wrote .crossroads.yaml", color.FgGreen)
	}

	if initWithPRD {
		prdPath := filepath.Join(absPath, "prd.json")
		if _, err := os.Stat(prdPath); err == nil && !initForce {
			printStatus("=", "prd.json already exists (use --force to overwrite)", color.FgYellow)
		} else {
			if err := writePRDTemplate(prdPath); err != nil {
				return fmt.Errorf("writing prd.json: %w", err)
			}
			printStatus("+", "wrote prd.json", color.FgGreen)
		}
	}

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		printStatus("!", "ANTHROPIC_API_KEY not set (you can set it later)", color.FgYellow)
	} else {
		printStatus("+", "ANTHROPIC_API_KEY is set", color.FgGreen)
	}

	fmt.Printf("\n%s crossroads initialization complete!\n\n", color.GreenString("+"))
	fmt.Println("Next steps:")
	if initWithPRD {
		fmt.Println("  crossroads run --prd prd.json")
	} else {
		fmt.Println("  crossroads init --with-prd   # scaffold an example PRD")
		fmt.Println("  crossroads run --prd <your-prd>.json")
	}
	return nil
}

func initGitRepo(repoPath string) error {
	gitDir := filepath.Join(repoPath, ".git")
	if _, err := os.Stat(gitDir); os.IsNotExist(err) {
		cmd := exec.Command("git", "init")
		cmd.Dir = repoPath
		if output, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("git init failed: %s\n%s", err, string(output))
		}
		printStatus("+", "initialized git repository", color.FgGreen)
	} else {
		printStatus("+", "git repository exists", color.FgGreen)
	}
	return nil
}

const projectConfigTemplate = `# crossroads project configuration
# overrides ~/.config/crossroads/config.yaml

orchestrator:
  max_parallel_agents: 3
  auto_merge: true
  conflict_strategy: manualReview

# history:
#   path: .crossroads/history.json

# skills:
#   user_dir: .crossroads/skills
`

func writePRDTemplate(path string) error {
	doc := models.PRDDocument{
		FeatureName: "Example Feature",
		Description: "Replace this with a short description of the feature.",
		Vision:      "Replace this with the product vision this feature serves.",
		UserStories: []models.PRDUserStory{
			{
				ID:                 "US-1",
				Title:              "Set up the data model",
				Description:        "As a developer, I need the core data model in place.",
				Priority:           models.PriorityHigh,
				AcceptanceCriteria: []string{"Types compile", "Basic CRUD works"},
			},
			{
				ID:                 "US-2",
				Title:              "Expose the API",
				Description:        "As a user, I need an endpoint to interact with the feature.",
				Priority:           models.PriorityMedium,
				DependsOn:          []string{"US-1"},
				AcceptanceCriteria: []string{"Endpoint returns 200 on success"},
			},
		},
		SuccessMetrics: []string{"Feature ships without regressions"},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func printStatus(symbol, message string, attr color.Attribute) {
	c := color.New(attr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}
