package features

// Name is one of the model's input features. The set is closed: values outside
// ExpectedNames are never stored in a Record.
type Name string

const (
	GCSMax                 Name = "GCS_max"
	GCSMean                Name = "GCS_mean"
	LactateMin             Name = "Lactate_min"
	LactateMax             Name = "Lactate_max"
	LactateMean            Name = "Lactate_mean"
	BUNMin                 Name = "BUN_min"
	BUNMean                Name = "BUN_mean"
	BUNMax                 Name = "BUN_max"
	BilirubinMax           Name = "Bilirubin_max"
	BilirubinMean          Name = "Bilirubin_mean"
	AlbuminMean            Name = "Albumin_mean"
	AlbuminMin             Name = "Albumin_min"
	AlbuminMax             Name = "Albumin_max"
	AlkPhosMean            Name = "AlkPhos_mean"
	AlkPhosMax             Name = "AlkPhos_max"
	AlkPhosMin             Name = "AlkPhos_min"
	PTMean                 Name = "PT_mean"
	PTMin                  Name = "PT_min"
	INRMean                Name = "INR_mean"
	INRMin                 Name = "INR_min"
	PhosphateMean          Name = "Phosphate_mean"
	PhosphateMax           Name = "Phosphate_max"
	PaO2Mean               Name = "PaO2_mean"
	PaO2Max                Name = "PaO2_max"
	APTTMean               Name = "aPTT_mean"
	APTTMin                Name = "aPTT_min"
	AGMean                 Name = "AG_mean"
	AGMax                  Name = "AG_max"
	AGMin                  Name = "AG_min"
	AGStd                  Name = "AG_std"
	SYSBPMin               Name = "SYSBP_min"
	SYSBPMean              Name = "SYSBP_mean"
	SYSBPStd               Name = "SYSBP_std"
	DIASBPMin              Name = "DIASBP_min"
	DIASBPMean             Name = "DIASBP_mean"
	Age                    Name = "age"
	RRMean                 Name = "RR_mean"
	RRMax                  Name = "RR_max"
	RRMin                  Name = "RR_min"
	TEMPStd                Name = "TEMP_std"
	TEMPMin                Name = "TEMP_min"
	HRMean                 Name = "HR_mean"
	HRMax                  Name = "HR_max"
	HRStd                  Name = "HR_std"
	RDWMax                 Name = "RDW_max"
	RDWMean                Name = "RDW_mean"
	RDWMin                 Name = "RDW_min"
	RDWStd                 Name = "RDW_std"
	AgeAdjComorbidityScore Name = "age_adj_comorbidity_score"
	MEANBPMin              Name = "MEANBP_min"
	MEANBPMean             Name = "MEANBP_mean"
)

// expectedNames is the model's column order. It must match the training data exactly.
var expectedNames = []Name{
	GCSMax, GCSMean,
	LactateMin, LactateMax, LactateMean,
	BUNMin, BUNMean, BUNMax,
	BilirubinMax, BilirubinMean,
	AlbuminMean, AlbuminMin, AlbuminMax,
	AlkPhosMean, AlkPhosMax, AlkPhosMin,
	PTMean, PTMin,
	INRMean, INRMin,
	PhosphateMean, PhosphateMax,
	PaO2Mean, PaO2Max,
	APTTMean, APTTMin,
	AGMean, AGMax, AGMin, AGStd,
	SYSBPMin, SYSBPMean, SYSBPStd,
	DIASBPMin, DIASBPMean,
	Age,
	RRMean, RRMax, RRMin,
	TEMPStd, TEMPMin,
	HRMean, HRMax, HRStd,
	RDWMax, RDWMean, RDWMin, RDWStd,
	AgeAdjComorbidityScore,
	MEANBPMin, MEANBPMean,
}

var expectedSet = func() map[Name]struct{} {
	set := make(map[Name]struct{}, len(expectedNames))
	for _, n := range expectedNames {
		set[n] = struct{}{}
	}
	return set
}()

// ExpectedNames returns the 51 feature names in model column order.
func ExpectedNames() []Name {
	out := make([]Name, len(expectedNames))
	copy(out, expectedNames)
	return out
}

// ParseName validates a raw key against the schema. Matching is case-sensitive.
func ParseName(raw string) (Name, bool) {
	n := Name(raw)
	if _, ok := expectedSet[n]; !ok {
		return "", false
	}
	return n, true
}

func (n Name) String() string {
	return string(n)
}
