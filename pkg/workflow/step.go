package workflow

import "errors"

// Step identifies a node in the conversation workflow.
type Step string

const (
	StepAnalyzeQuery               Step = "analyze_query"
	StepHandleGeneralQuery         Step = "handle_general_query"
	StepOptimizeSearchQuery        Step = "optimize_search_query"
	StepSearchProducts             Step = "search_products"
	StepFilterProductLinks         Step = "filter_product_links"
	StepExtractProductData         Step = "extract_product_data"
	StepValidateAndSelect          Step = "validate_and_select"
	StepGenerateFinalResponse      Step = "generate_final_response"
	StepGenerateSuggestedQuestions Step = "generate_suggested_questions"
	StepEnd                        Step = "end"
)

// DefaultRoute is the transition label taken when a handler does not
// return an explicit one.
const DefaultRoute = ""

var (
	// ErrStepLimitExceeded means the run walked more steps than the
	// ceiling allows, which only happens with a miswired graph.
	ErrStepLimitExceeded = errors.New("workflow step limit exceeded")

	// ErrUnknownStep means the run reached a step with no handler or a
	// routing label with no transition.
	ErrUnknownStep = errors.New("unknown workflow step or route")
)
