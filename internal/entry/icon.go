package entry

// Icon returns an emoji icon for the entry based on its extension.
func (e Entry) Icon() string {
	if e.IsDir {
		return "📁"
	}
	switch e.Ext {
	case "go":
		return "🐹"
	case "js", "ts", "jsx", "tsx":
		return "📜"
	case "py":
		return "🐍"
	case "rb":
		return "💎"
	case "java":
		return "☕"
	case "rs":
		return "🦀"
	case "cpp", "c", "h", "hpp":
		return "⚙️"
	case "html", "htm":
		return "🌐"
	case "css", "scss", "sass":
		return "🎨"
	case "json", "yaml", "yml", "toml":
		return "📋"
	case "md", "markdown":
		return "📝"
	case "txt", "log":
		return "📄"
	case "png", "jpg", "jpeg", "gif", "svg", "ico", "webp", "bmp":
		return "🖼️"
	case "mp4", "avi", "mov", "mkv", "webm":
		return "🎬"
	case "mp3", "wav", "flac", "ogg", "m4a":
		return "🎵"
	case "zip", "tar", "gz", "tgz", "rar", "7z", "xz", "bz2":
		return "📦"
	case "pdf":
		return "📕"
	case "doc", "docx":
		return "📘"
	case "xls", "xlsx":
		return "📊"
	case "sh", "bash", "zsh":
		return "🖥️"
	case "git", "gitignore":
		return "🔀"
	default:
		return "📄"
	}
}
