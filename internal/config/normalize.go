package config

import "strings"

func (c *Config) normalize() error {
	c.Database.Host = strings.TrimSpace(c.Database.Host)
	c.Database.User = strings.TrimSpace(c.Database.User)
	c.Database.Name = strings.TrimSpace(c.Database.Name)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	if path := strings.TrimSpace(c.Postgres.ConfPath); path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return err
		}
		c.Postgres.ConfPath = expanded
	} else {
		c.Postgres.ConfPath = ""
	}
	return nil
}
