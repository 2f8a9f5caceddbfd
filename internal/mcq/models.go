package mcq

// Statuses a staged MCQ moves through. Only ready→published is performed by
// the publish engine; draft→ready is an authoring action in the sheet.
const (
	StatusDraft     = "draft"
	StatusReady     = "ready"
	StatusPublished = "published"
)

// Columns is the staging sheet schema, in exact column order. Row values map
// positionally onto StagedMCQ fields.
var Columns = []string{
	"mcq_id",
	"status",
	"created_at",
	"updated_at",
	"stem_text",
	"stem_image_key",
	"stem_video_url",
	"option_a_text",
	"option_a_image_key",
	"option_b_text",
	"option_b_image_key",
	"option_c_text",
	"option_c_image_key",
	"option_d_text",
	"option_d_image_key",
	"correct_option",
	"explanation_text",
	"explanation_image_key",
	"key_learning_point",
	"author",
	"commit_hash",
	"published_batch",
	"is_latest",
}

// StagedMCQ is one row of the staging sheet. It doubles as the published
// payload snapshot, which is why every field carries a JSON tag matching its
// column name.
type StagedMCQ struct {
	MCQID     string `json:"mcq_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`

	StemText     string `json:"stem_text"`
	StemImageKey string `json:"stem_image_key"`
	StemVideoURL string `json:"stem_video_url"`

	OptionAText     string `json:"option_a_text"`
	OptionAImageKey string `json:"option_a_image_key"`
	OptionBText     string `json:"option_b_text"`
	OptionBImageKey string `json:"option_b_image_key"`
	OptionCText     string `json:"option_c_text"`
	OptionCImageKey string `json:"option_c_image_key"`
	OptionDText     string `json:"option_d_text"`
	OptionDImageKey string `json:"option_d_image_key"`

	CorrectOption string `json:"correct_option"`

	ExplanationText     string `json:"explanation_text"`
	ExplanationImageKey string `json:"explanation_image_key"`
	KeyLearningPoint    string `json:"key_learning_point"`
	Author              string `json:"author"`

	CommitHash     string `json:"commit_hash"`
	PublishedBatch string `json:"published_batch"`
	IsLatest       bool   `json:"is_latest"`
}

// PublishedMCQ is one row of the durable published store.
type PublishedMCQ struct {
	MCQNum         int       `json:"mcq_num"`
	MCQID          string    `json:"mcq_id"`
	Payload        StagedMCQ `json:"payload_json"`
	CommitHash     string    `json:"commit_hash"`
	PublishedBatch string    `json:"published_batch"`
	UpdatedAt      int64     `json:"updated_at"`
}
