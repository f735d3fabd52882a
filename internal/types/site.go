package types

// Site is a planned energy-storage installation.
type Site struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Path           string   `json:"path"`
	Address        string   `json:"address"`
	Lat            float64  `json:"lat"`
	Long           float64  `json:"long"`
	Stage          string   `json:"stage"`
	CreatedDate    int64    `json:"created_date"`
	UpdatedDate    int64    `json:"updated_date"`
	Market         string   `json:"market"`
	Metering       string   `json:"metering"`
	RevenueStreams []string `json:"revenue_streams,omitempty"`
	Layout         Layout   `json:"layout,omitempty"`
}

// SitePatch carries a partial site update. Nil fields are left untouched.
type SitePatch struct {
	Name           *string   `json:"name,omitempty"`
	Path           *string   `json:"path,omitempty"`
	Address        *string   `json:"address,omitempty"`
	Lat            *float64  `json:"lat,omitempty"`
	Long           *float64  `json:"long,omitempty"`
	Stage          *string   `json:"stage,omitempty"`
	Market         *string   `json:"market,omitempty"`
	Metering       *string   `json:"metering,omitempty"`
	RevenueStreams *[]string `json:"revenue_streams,omitempty"`
	Layout         *Layout   `json:"layout,omitempty"`
}

// Apply copies every set field of the patch onto site.
func (p SitePatch) Apply(site *Site) {
	if p.Name != nil {
		site.Name = *p.Name
	}
	if p.Path != nil {
		site.Path = *p.Path
	}
	if p.Address != nil {
		site.Address = *p.Address
	}
	if p.Lat != nil {
		site.Lat = *p.Lat
	}
	if p.Long != nil {
		site.Long = *p.Long
	}
	if p.Stage != nil {
		site.Stage = *p.Stage
	}
	if p.Market != nil {
		site.Market = *p.Market
	}
	if p.Metering != nil {
		site.Metering = *p.Metering
	}
	if p.RevenueStreams != nil {
		site.RevenueStreams = *p.RevenueStreams
	}
	if p.Layout != nil {
		site.Layout = *p.Layout
	}
}

type Stage struct {
	Value       string `json:"value"`
	Display     string `json:"display"`
	Description string `json:"description"`
}

const StageDesign = "design"

var Stages = []Stage{
	{Value: "design", Display: "Design", Description: "Detailed design and layout creation"},
	{Value: "approval", Display: "Approval", Description: "Securing necessary permits and approvals"},
	{Value: "sold", Display: "Sold", Description: "Contract secured, ready for implementation"},
	{Value: "pre-installation", Display: "Pre-Installation", Description: "Preparatory work before installation has begun"},
	{Value: "installation", Display: "Installation", Description: "Installation of equipment in progress"},
	{Value: "commissioning", Display: "Commissioning", Description: "Testing and final checks before going live"},
	{Value: "operational", Display: "Operational", Description: "Site is live and operational"},
}

func IsValidStage(value string) bool {
	for _, s := range Stages {
		if s.Value == value {
			return true
		}
	}
	return false
}

type MultiplierType string

const (
	MultiplierPercentOfHardware MultiplierType = "percent_of_hardware"
	MultiplierCostPerKWh        MultiplierType = "cost_per_kwh"
)

// CostMultiplier is one soft-cost line applied on top of hardware cost.
type CostMultiplier struct {
	Name           string         `json:"name" mapstructure:"name"`
	Display        string         `json:"display" mapstructure:"display"`
	Sort           int            `json:"sort" mapstructure:"sort"`
	MultiplierType MultiplierType `json:"multiplier_type" mapstructure:"multiplier_type"`
	Multiplier     float64        `json:"multiplier" mapstructure:"multiplier"`
}
