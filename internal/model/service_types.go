package model

// BehaviorContext 客户端随每次请求上报的行为信号，负载/压力估计的输入。
// swagger:model
type BehaviorContext struct {
	ResponseTimeMs    int     `json:"responseTimeMs"`
	ExpectedTimeMs    int     `json:"expectedTimeMs"`
	HesitationMs      int     `json:"hesitationMs"`
	KeystrokeVariance float64 `json:"keystrokeVariance"`
	DeviceType        string  `json:"deviceType"` // desktop / tablet / mobile
	NetworkQuality    float64 `json:"networkQuality"`
	SessionMinutes    float64 `json:"sessionMinutes"`
	ProblemComplexity float64 `json:"problemComplexity"`
}

// swagger:model
type UpdateMasteryRequest struct {
	StudentID      string          `json:"studentId" binding:"required"`
	ConceptID      string          `json:"conceptId" binding:"required"`
	Correct        bool            `json:"correct"`
	ExamCode       string          `json:"examCode" binding:"required"`
	Subject        string          `json:"subject" binding:"required"`
	DemographicGrp string          `json:"demographicGroup"`
	Context        BehaviorContext `json:"context"`
}

// swagger:model
type LoadEstimate struct {
	Stress         float64 `json:"stress"`
	IntrinsicLoad  float64 `json:"intrinsicLoad"`
	ExtraneousLoad float64 `json:"extraneousLoad"`
	TotalLoad      float64 `json:"totalLoad"`
	OverloadRisk   bool    `json:"overloadRisk"`
}

// swagger:model
type TimeAdjustment struct {
	Name    string  `json:"name"`
	Factor  float64 `json:"factor"`
	AfterMs int     `json:"afterMs"`
}

// swagger:model
type TimeAllocation struct {
	FinalTimeMs int              `json:"finalTimeMs"`
	Capped      bool             `json:"capped"`
	CapMs       int              `json:"capMs"`
	Breakdown   []TimeAdjustment `json:"breakdown"`
}

// swagger:model
type TransferOutcome struct {
	ConceptID     string  `json:"conceptId"`
	Weight        float64 `json:"weight"`
	MasteryBefore float64 `json:"masteryBefore"`
	MasteryAfter  float64 `json:"masteryAfter"`
}

// swagger:model
type UpdateMasteryResult struct {
	StudentID      string            `json:"studentId"`
	ConceptID      string            `json:"conceptId"`
	MasteryBefore  float64           `json:"masteryBefore"`
	MasteryAfter   float64           `json:"masteryAfter"`
	PracticeCount  int               `json:"practiceCount"`
	Recovery       bool              `json:"recovery"`
	Estimate       LoadEstimate      `json:"estimate"`
	Transferred    []TransferOutcome `json:"transferred,omitempty"`
	NextAllocation *TimeAllocation   `json:"nextAllocation,omitempty"`
	// Parameter/Knowledge Store 超时被兜底吸收时为 true，请求本身不失败
	Degraded bool `json:"degraded,omitempty"`
}

// swagger:model
type AllocateTimeRequest struct {
	StudentID  string          `json:"studentId" binding:"required"`
	ConceptID  string          `json:"conceptId" binding:"required"`
	ExamCode   string          `json:"examCode" binding:"required"`
	BaseTimeMs int             `json:"baseTimeMs"`
	Difficulty float64         `json:"difficulty"`
	Context    BehaviorContext `json:"context"`
}

// swagger:model
type CalibrationFitRequest struct {
	Logits []float64 `json:"logits" binding:"required"`
	Labels []int     `json:"labels" binding:"required"`
}

// swagger:model
type FairnessSampleRequest struct {
	ExamCode  string  `json:"examCode" binding:"required"`
	Subject   string  `json:"subject" binding:"required"`
	GroupCode string  `json:"group" binding:"required"`
	Outcome   float64 `json:"outcome"`
}

// swagger:model
type FairnessGroupStat struct {
	GroupCode   string  `json:"group"`
	Average     float64 `json:"average"`
	SampleCount int64   `json:"sampleCount"`
	// 样本量达到最小门槛、纳入差异计算时为 true
	Included bool `json:"included"`
}

// swagger:model
type FairnessReport struct {
	ExamCode  string              `json:"examCode"`
	Subject   string              `json:"subject"`
	Groups    []FairnessGroupStat `json:"groups"`
	Disparity float64             `json:"disparity"`
	Flagged   bool                `json:"flagged"`
	Threshold float64             `json:"threshold"`
}
