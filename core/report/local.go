package report

import (
	"context"
	"fmt"

	"github.com/impact7/scoredesk/core/score"
)

var (
	juniorSubjects = []string{"L/C", "Voca", "Gr", "R/C", "Syn"}
	highSubjects   = []string{"청해", "대의파악", "문법어휘", "세부사항", "빈칸추론", "간접쓰기"}

	indices = []struct{ name, header string }{
		{"English Sense", "EnglishSense(30%)"},
		{"English Logic", "EnglishLogic(30%)"},
		{"GPA index", "GPAindex(30%)"},
		{"CSAT index", "CSATindex(30%)"},
	}
)

// tier is a band of the total relative to the cohort.
type tier struct {
	text, footer string
}

// Local is the deterministic, offline commentary generator.
type Local struct{}

func (Local) Generate(_ context.Context, req Request) (Commentary, error) {
	var (
		sum = num(req.Scores, score.SumHeader)
		avg = num(req.Scores, score.AvgSumHeader)
		top = num(req.Scores, score.TopSumHeader)
	)

	t := tierOf(sum, avg, top)

	var indexText string
	if req.Department == score.Elementary || req.Department == score.Middle {
		best := indices[0]
		bestVal := num(req.Scores, best.header)
		for _, idx := range indices[1:] {
			if v := num(req.Scores, idx.header); v >= bestVal {
				best, bestVal = idx, v
			}
		}
		if bestVal > 70 {
			indexText = fmt.Sprintf("특히 %s 지표에서 강한 면모를 보이고 있어, 이를 전략적 도구로 활용한다면 중장기적으로 매우 유리한 위치를 선점할 수 있습니다. ", best.name)
		}
	}

	return Commentary{
		Commentary: fmt.Sprintf("%s 학생은 현재 %s 상태입니다. %s%s 선생님들의 정성 어린 지도를 통해 한 단계 더 높은 성장을 반드시 이뤄내겠습니다.",
			req.Student, t.text, indexText, pattern(req.Department, req.Scores, sum, avg)),
		Footer: fmt.Sprintf("%s! %s 학생을 임팩트7이 응원합니다.", t.footer, req.Student),
	}, nil
}

func tierOf(sum, avg, top float64) tier {
	switch {
	case sum >= top+15:
		return tier{"압도적인 실력으로 전체 최정상을 유지하고 있는", "압도적 우위의 성취도"}
	case sum >= top:
		return tier{"전국 단위 상위권과 어깨를 나란히 할 경쟁력을 입증한", "상위권의 당당한 실력"}
	case sum >= avg+15:
		return tier{"리딩 그룹 진입을 눈앞에 둔 매우 우수한 학습 태도의", "비상하는 상위권"}
	case sum >= avg+5:
		return tier{"평균을 확실히 상회하며 안정적인 성장 궤도에 진입한", "안정적인 우수형"}
	case sum >= avg-5:
		return tier{"평균 수준의 기본기를 잘 갖추고 다음 단계 도약을 준비하는", "잠재력 가득한 중위권"}
	case sum >= avg-15:
		return tier{"기초 체력을 성실히 기르며 성적 향상의 발판을 다지고 있는", "성실한 발전 단계"}
	case sum >= avg-25:
		return tier{"개념의 정확한 확립과 규칙적인 학습 습관 형성이 필요한", "체계적인 관리 필요"}
	case sum > 40:
		return tier{"학습 의지 고취를 통해 새로운 변화의 계기를 마련해야 할", "격려가 필요한 도전"}
	case sum > 20:
		return tier{"영어의 기초 원리를 차근차근 익히며 적응력을 높이고 있는", "한 걸음씩 꾸준하게"}
	default:
		return tier{"선생님들의 세밀한 개별 지도가 가장 우선시되는 기초 단계의", "함께 가는 동행 학습"}
	}
}

// pattern describes the strengths and weaknesses across subjects.
func pattern(dept score.Department, scores map[string]string, sum, avg float64) string {
	subjects := juniorSubjects
	if dept == score.High {
		subjects = highSubjects
	}
	var (
		best, worst = subjects[0], subjects[0]
		max, min    = num(scores, best), num(scores, worst)
	)
	for _, s := range subjects[1:] {
		v := num(scores, s)
		if v > max {
			best, max = s, v
		}
		if v < min {
			worst, min = s, v
		}
	}
	gap := max - min

	switch {
	case gap <= 15 && sum > avg:
		return "전 영역이 고르게 발달한 상향 평준화된 상태가 인상적입니다. 지금의 완벽한 밸런스를 유지하며 고난도 문항에 대한 변별력을 강화해 봅시다."
	case gap <= 15:
		return "영역별 편차는 적으나 전체적인 어휘량과 문제 풀이 양을 늘려 정답률의 마지노선을 한 단계 높이는 노력이 병행되어야 합니다."
	case best == "Voca":
		return fmt.Sprintf("%s에서의 탁월한 성취도가 리포트 활력을 불어넣고 있습니다. 어휘 강점을 문장 해석의 정확도로 연결한다면 성적이 급상승할 것입니다.", best)
	case best == "L/C" || best == "청해":
		return fmt.Sprintf("%s 영역의 높은 감각을 보유하고 있습니다. 들리는 내용을 즉각 해석하는 훈련을 통해 독해의 속도감을 함께 잡아낼 수 있는 충분한 재능이 보입니다.", best)
	case best == "Gr" || best == "문법어휘":
		return "문법의 원리를 꿰뚫고 있는 논리적인 해석력이 돋보입니다. 파편화된 규칙들을 실전 독해 지문에 적용하여 의미를 확장하는 연습에 매진합시다."
	case min < 50 && gap > 30:
		return fmt.Sprintf("%s 영역의 일시적 정체가 전체 평균을 낮추고 있습니다. 당분간은 취약 파트를 집중 보완하여 하한선을 끌어올리는 전략적 학습이 시급합니다.", worst)
	case max > 90:
		return fmt.Sprintf("%s 영역에서 독보적인 완벽함을 보여주었습니다. 이 성취감을 동력 삼아 다른 영역의 목표치도 상향 조정하여 전 영역 1등급을 노려봅시다.", best)
	case dept == score.High && (best == "빈칸추론" || best == "간접쓰기"):
		return "고등학교 최고난도 유형인 추론 영역에서 탁월한 분석력을 보여주었습니다. 논리가 강한 만큼 어휘와 구문의 정교함만 더하면 최상위권 안착이 가능합니다."
	case sum < avg && max > avg:
		return "전체 점수는 평균보다 낮으나 특정 영역에서 보여준 집중력은 매우 고무적입니다. 이 잠재력을 믿고 기초 단어부터 다시 정복해 나갈 자신감을 가집시다."
	default:
		return "영역별 점수 기복이 다소 과한 편입니다. 아는 것을 틀리지 않는 꼼꼼한 오답 분석과 실전 모의고사 훈련을 통해 실전 감각을 안정화시켜야 합니다."
	}
}

func num(scores map[string]string, header string) float64 {
	v, _ := score.Lookup(scores, header)
	return score.ParseNumber(v)
}
