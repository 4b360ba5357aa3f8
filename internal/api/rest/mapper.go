package rest

import "github.com/distmr/tracker/internal/jobtracker"

func (req *SubmitJobRequest) ToJobInfo() jobtracker.JobInfo {
	return jobtracker.JobInfo{
		InputPaths: req.InputPaths,
		OutputPath: req.OutputPath,
		Reducers:   req.Reducers,
		Config:     req.Config,
	}
}

func toGetJobResponse(id jobtracker.JobId, info jobtracker.JobInfo, phase jobtracker.JobPhase, outcome *jobtracker.Outcome) GetJobResponse {
	resp := GetJobResponse{
		JobID:      id.String(),
		Status:     phase.String(),
		InputPaths: info.InputPaths,
		OutputPath: info.OutputPath,
	}
	if outcome != nil && outcome.Err != nil {
		msg := outcome.Err.Error()
		resp.Error = &msg
	}
	return resp
}
