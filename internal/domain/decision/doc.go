// Package decision resolves the doctor-letter questionnaire into a single case.
//
// Questions:
//
//	q1  symptoms started after an identifiable trigger     yes/no
//	q2  the trigger was an acute illness or vaccination    yes/no
//	q3  the trigger was an infection                       yes/no
//	q4  infection type                                     EBV, Influenza, COVID-19, other
//	q5  non-infectious trigger                             vaccination, infection, other
//	q6  orthostatic symptoms present                       yes/no
//	q7  orthostatic testing performed                      yes/no
//	q8  test result                                        POTS, OI, none
//
// Yes/no slots accept the strings "yes"/"no" and booleans.
package decision
