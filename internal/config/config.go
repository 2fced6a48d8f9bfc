package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AdvisorSource is one paginated course-category listing to scrape.
type AdvisorSource struct {
	Label string
	URL   string
}

type Config struct {
	DBPath    string
	OutputDir string

	// AdmissionEpochYear is the institutional epoch added to the 2-digit
	// admission-year token of a cohort code (e.g. 65 -> 2020).
	AdmissionEpochYear int
	StudentEmailDomain string

	AdvisorSources []AdvisorSource
	HTTPTimeoutMs  int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		AdmissionEpochYear: getEnvInt("ADMISSION_EPOCH_YEAR", 1955),
		StudentEmailDomain: getEnv("STUDENT_EMAIL_DOMAIN", "vnu.edu.vn"),

		AdvisorSources: parseAdvisorSources(getEnv("ADVISOR_SOURCES", defaultAdvisorSources)),
		HTTPTimeoutMs:  getEnvInt("HTTP_TIMEOUT_MS", 30000),
	}

	return cfg, nil
}

const defaultAdvisorSources = "K64=https://courses.uet.edu.vn/course/index.php?categoryid=57," +
	"K65=https://courses.uet.edu.vn/course/index.php?categoryid=58," +
	"K66=https://courses.uet.edu.vn/course/index.php?categoryid=71," +
	"K67=https://courses.uet.edu.vn/course/index.php?categoryid=77"

func parseAdvisorSources(raw string) []AdvisorSource {
	out := []AdvisorSource{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		label, url, found := strings.Cut(pair, "=")
		if !found || strings.TrimSpace(url) == "" {
			continue
		}
		out = append(out, AdvisorSource{Label: strings.TrimSpace(label), URL: strings.TrimSpace(url)})
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
