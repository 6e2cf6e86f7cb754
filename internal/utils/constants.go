package utils

// Well-known file and directory names used across the project.
const (
	// IgnoreFileName is the name of the plain ignore file honored with --use-ignore.
	IgnoreFileName = ".ignore"
	// GitIgnoreFileName is the name of the Git ignore file honored with --use-gitignore.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// ConfigFileName is the name of the project-local configuration file.
	ConfigFileName = ".reposnap.yaml"
	// GlobalConfigFileName is the name of the configuration file inside GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding global configuration.
	GlobalConfigDirectoryName = ".reposnap"
	// ExclusionPrefix marks patterns anchored at the processing root.
	ExclusionPrefix = "EXCL:"
)
